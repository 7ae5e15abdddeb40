package handler

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/VladKovDev/checkout-bridge/internal/services/checkout"
	"github.com/VladKovDev/checkout-bridge/internal/services/validation"
	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GenericFailureMessage is shown for every failure that is not the
// customer's to fix.
const GenericFailureMessage = "We could not start your payment right now. Please try again later."

// maxFormBytes bounds the checkout form body.
const maxFormBytes = 16 << 10

//go:embed templates/*.html
var templateFS embed.FS

type CheckoutInitiator interface {
	Initiate(ctx context.Context, req checkout.Request) (*checkout.Result, error)
	MinAmount() decimal.Decimal
}

type CheckoutHandler struct {
	initiator CheckoutInitiator
	siteName  string
	currency  string
	tmpl      *template.Template
	logger    logger.Logger
}

type formView struct {
	SiteName      string
	Currency      string
	MinAmount     string
	MaxNameLength int
	UserName      string
	UserEmail     string
	Amount        string
	Error         string
}

func NewCheckoutHandler(initiator CheckoutInitiator, siteName, currency string, log logger.Logger) (*CheckoutHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/checkout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse checkout template: %w", err)
	}

	return &CheckoutHandler{
		initiator: initiator,
		siteName:  siteName,
		currency:  currency,
		tmpl:      tmpl,
		logger:    log,
	}, nil
}

// Form renders the empty checkout form.
func (h *CheckoutHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.view(checkout.Request{}, ""))
}

// Submit runs one checkout from the posted form and redirects the customer
// to the hosted payment page on success.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.logger.Warn("failed to parse checkout form",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		h.render(w, r, http.StatusBadRequest, h.view(checkout.Request{}, "The form could not be read. Please try again."))
		return
	}

	req := checkout.Request{
		UserName:  r.PostFormValue("userName"),
		UserEmail: r.PostFormValue("userEmail"),
		Amount:    r.PostFormValue("amount"),
	}

	result, err := h.initiator.Initiate(r.Context(), req)
	if err != nil {
		var vErr *validation.Error
		if errors.As(err, &vErr) {
			h.render(w, r, http.StatusBadRequest, h.view(req, vErr.Message))
			return
		}

		h.logger.Error("checkout failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		h.render(w, r, http.StatusBadGateway, h.view(req, GenericFailureMessage))
		return
	}

	if result.Kind == checkout.KindRedirect {
		http.Redirect(w, r, result.URL, http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusBadGateway, h.view(req, result.Message))
}

func (h *CheckoutHandler) view(req checkout.Request, errMsg string) formView {
	return formView{
		SiteName:      h.siteName,
		Currency:      h.currency,
		MinAmount:     h.initiator.MinAmount().StringFixed(2),
		MaxNameLength: validation.MaxUserNameLength,
		UserName:      req.UserName,
		UserEmail:     req.UserEmail,
		Amount:        req.Amount,
		Error:         errMsg,
	}
}

func (h *CheckoutHandler) render(w http.ResponseWriter, r *http.Request, status int, view formView) {
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, view); err != nil {
		h.logger.Error("failed to render checkout form",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
