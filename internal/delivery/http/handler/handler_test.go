package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/VladKovDev/checkout-bridge/internal/infrastructure/crypto"
	"github.com/VladKovDev/checkout-bridge/internal/services/checkout"
	"github.com/VladKovDev/checkout-bridge/internal/services/hmac"
	"github.com/VladKovDev/checkout-bridge/internal/services/validation"
	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInitiator struct {
	result      *checkout.Result
	err         error
	got         checkout.Request
	hadDeadline bool
}

func (s *stubInitiator) Initiate(ctx context.Context, req checkout.Request) (*checkout.Result, error) {
	s.got = req
	_, s.hadDeadline = ctx.Deadline()
	return s.result, s.err
}

func (s *stubInitiator) MinAmount() decimal.Decimal {
	return decimal.RequireFromString("1.00")
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

func newTestRouter(t *testing.T, initiator *stubInitiator, secret string, notifier Notifier) http.Handler {
	t.Helper()
	ch, err := NewCheckoutHandler(initiator, "Test Shop", "USD", logger.Noop())
	require.NoError(t, err)
	wh := NewWebhookHandler(secret, notifier, logger.Noop())
	return NewRouter(ch, wh, logger.Noop())
}

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validForm() url.Values {
	return url.Values{
		"userName":  {"ABC"},
		"userEmail": {"abc@gmail.com"},
		"amount":    {"100"},
	}
}

func TestCheckoutHandler_Form(t *testing.T) {
	h := newTestRouter(t, &stubInitiator{}, "", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "Test Shop")
	assert.Contains(t, body, `action="/checkout"`)
	assert.Contains(t, body, "minimum 1.00")
}

func TestCheckoutHandler_Redirect(t *testing.T) {
	initiator := &stubInitiator{result: checkout.Redirect("https://pay.example/abc")}
	h := newTestRouter(t, initiator, "", nil)

	rec := postForm(h, validForm())

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://pay.example/abc", rec.Header().Get("Location"))
	assert.Equal(t, checkout.Request{UserName: "ABC", UserEmail: "abc@gmail.com", Amount: "100"}, initiator.got)
}

func TestCheckoutHandler_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		result     *checkout.Result
		err        error
		wantStatus int
		wantText   string
		notText    string
	}{
		{
			name:       "validation error",
			err:        &validation.Error{Field: "userEmail", Message: "Please enter a valid email address.", Err: validation.ErrInvalidEmail},
			wantStatus: http.StatusBadRequest,
			wantText:   "Please enter a valid email address.",
		},
		{
			name:       "processor declined",
			result:     checkout.Failure("currency not supported"),
			wantStatus: http.StatusBadGateway,
			wantText:   "currency not supported",
		},
		{
			name:       "http error",
			err:        &checkout.HTTPError{StatusCode: 500, Message: "bad merchant", Body: `{"error":"bad merchant"}`},
			wantStatus: http.StatusBadGateway,
			wantText:   GenericFailureMessage,
			notText:    "bad merchant",
		},
		{
			name:       "encryption error",
			err:        &crypto.EncryptionError{Op: "encrypt", Cause: crypto.ErrInvalidKeySize},
			wantStatus: http.StatusBadGateway,
			wantText:   GenericFailureMessage,
			notText:    "encrypt",
		},
		{
			name:       "network error",
			err:        &checkout.NetworkError{URL: "https://api.example", Err: errors.New("dial tcp: refused")},
			wantStatus: http.StatusBadGateway,
			wantText:   GenericFailureMessage,
			notText:    "dial tcp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &stubInitiator{result: tt.result, err: tt.err}, "", nil)

			rec := postForm(h, validForm())

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, tt.wantText)
			if tt.notText != "" {
				assert.NotContains(t, body, tt.notText)
			}
			assert.Contains(t, body, `value="abc@gmail.com"`, "form keeps the submitted values")
		})
	}
}

func TestCheckoutHandler_FailureWrittenOnce(t *testing.T) {
	initiator := &stubInitiator{err: &checkout.NetworkError{URL: "https://api.example", Err: context.DeadlineExceeded}}
	h := newTestRouter(t, initiator, "", nil)

	rec := postForm(h, validForm())

	assert.False(t, initiator.hadDeadline, "router must not impose its own request deadline")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), GenericFailureMessage)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<!DOCTYPE html>"))
}

func TestCheckoutHandler_EscapesInput(t *testing.T) {
	initiator := &stubInitiator{err: &validation.Error{Field: "userName", Message: "Name is too long.", Err: validation.ErrFieldTooLong}}
	h := newTestRouter(t, initiator, "", nil)

	form := validForm()
	form.Set("userName", `<script>alert(1)</script>`)
	rec := postForm(h, form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>alert(1)</script>")
}

func TestCheckoutHandler_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, &stubInitiator{}, "", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func postWebhook(h http.Handler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_Unsigned(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestRouter(t, &stubInitiator{}, "", notifier)

	rec := postWebhook(h, `{"orderID":"abc","status":"completed","amount":"100.00","currency":"USD"}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "Order abc: completed (100.00 USD)", notifier.messages[0])
}

func TestWebhookHandler_Signed(t *testing.T) {
	const secret = "whsec"
	body := `{"orderID":"abc","status":"failed"}`
	valid, err := hmac.Sign(secret, []byte(body))
	require.NoError(t, err)

	tests := []struct {
		name       string
		signature  string
		wantStatus int
	}{
		{"valid", valid, http.StatusOK},
		{"valid upper case", strings.ToUpper(valid), http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong", strings.Repeat("0", 64), http.StatusUnauthorized},
		{"not hex", "zz", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &stubInitiator{}, secret, nil)
			rec := postWebhook(h, body, tt.signature)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestWebhookHandler_InvalidBody(t *testing.T) {
	notifier := &recordingNotifier{}
	h := newTestRouter(t, &stubInitiator{}, "", notifier)

	for _, body := range []string{"", "not json", "[1,2]", "null"} {
		rec := postWebhook(h, body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	assert.Empty(t, notifier.messages)
}

func TestWebhookHandler_NotifierFailureStillAcknowledges(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	h := newTestRouter(t, &stubInitiator{}, "", notifier)

	rec := postWebhook(h, `{"orderID":"abc","status":"pending"}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, notifier.messages, 1)
}

type deadlineNotifier struct {
	deadline time.Time
	ok       bool
}

func (n *deadlineNotifier) Notify(ctx context.Context, _ string) error {
	n.deadline, n.ok = ctx.Deadline()
	return nil
}

func TestWebhookHandler_NotifierGetsDeadline(t *testing.T) {
	notifier := &deadlineNotifier{}
	h := newTestRouter(t, &stubInitiator{}, "", notifier)

	start := time.Now()
	rec := postWebhook(h, `{"orderID":"abc","status":"completed"}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, notifier.ok, "notifier context must carry a deadline")
	assert.WithinDuration(t, start.Add(notifyTimeout), notifier.deadline, time.Second)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, &stubInitiator{}, "", nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "ok", string(body))
}
