package handler

import (
	"net/http"

	"github.com/VladKovDev/checkout-bridge/internal/logger"
	pkglogger "github.com/VladKovDev/checkout-bridge/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the checkout and webhook endpoints. Outbound calls carry
// their own client timeouts, so no request-wide deadline is set here.
func NewRouter(checkoutHandler *CheckoutHandler, webhookHandler *WebhookHandler, log pkglogger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(middleware.Recoverer)

	r.Get("/", checkoutHandler.Form)
	r.Post("/checkout", checkoutHandler.Submit)
	r.Method(http.MethodPost, "/webhook", webhookHandler)
	r.Get("/healthz", Health)

	return r
}
