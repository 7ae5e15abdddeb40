package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"go.uber.org/zap"
)

// FallbackFailureMessage is used when the processor answers 2xx with neither
// a checkout URL nor an error.
const FallbackFailureMessage = "unrecognized response from payment processor"

// maxResponseBody caps how much of the processor response is read.
const maxResponseBody = 1 << 20

type Kind int

const (
	KindRedirect Kind = iota + 1
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindRedirect:
		return "redirect"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the interpreted 2xx answer of the processor: either a redirect to
// the hosted payment page or a failure message.
type Result struct {
	Kind    Kind
	URL     string
	Message string
	OrderID string
}

func Redirect(url string) *Result {
	return &Result{Kind: KindRedirect, URL: url}
}

func Failure(message string) *Result {
	return &Result{Kind: KindFailure, Message: message}
}

// processorResponse is the documented response shape; both fields are optional.
type processorResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
	Error       string `json:"error"`
}

type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient returns a client whose every call is bounded by timeout.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// NewClientWithHTTP lets callers supply their own transport.
func NewClientWithHTTP(httpClient *http.Client, log logger.Logger) *Client {
	return &Client{httpClient: httpClient, logger: log}
}

// Submit performs one POST of body to endpointURL. It never retries.
func (c *Client) Submit(ctx context.Context, endpointURL string, headers http.Header, body []byte) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("processor request failed",
			zap.String("url", endpointURL),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, &NetworkError{URL: endpointURL, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &NetworkError{URL: endpointURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("processor responded",
		zap.String("url", endpointURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.Int("body_size", len(respBody)))

	return interpret(resp.StatusCode, respBody)
}

func interpret(status int, body []byte) (*Result, error) {
	var parsed processorResponse
	parseErr := decodeObject(body, &parsed)

	if status < 200 || status > 299 {
		httpErr := &HTTPError{StatusCode: status, Body: truncate(body)}
		if parseErr == nil {
			httpErr.Message = parsed.Error
		}
		return nil, httpErr
	}

	if parseErr != nil {
		return nil, &ResponseParseError{Body: truncate(body), Err: parseErr}
	}

	switch {
	case parsed.CheckoutURL != "":
		return Redirect(parsed.CheckoutURL), nil
	case parsed.Error != "":
		return Failure(parsed.Error), nil
	default:
		return Failure(FallbackFailureMessage), nil
	}
}

var errNotObject = errors.New("response body is not a JSON object")

// decodeObject accepts only a JSON object; null, arrays and scalars are errors.
func decodeObject(body []byte, v *processorResponse) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	return json.Unmarshal(trimmed, v)
}
