package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/VladKovDev/checkout-bridge/internal/logger"
	"github.com/VladKovDev/checkout-bridge/internal/models"
	"github.com/VladKovDev/checkout-bridge/internal/services/hmac"
	pkglogger "github.com/VladKovDev/checkout-bridge/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Signature"

const (
	maxWebhookBytes = 64 << 10
	notifyTimeout   = 10 * time.Second
)

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// WebhookHandler acknowledges processor notifications. When a secret is set
// every request must be signed; otherwise any JSON object is accepted.
type WebhookHandler struct {
	secret   string
	notifier Notifier
	logger   pkglogger.Logger
}

func NewWebhookHandler(secret string, notifier Notifier, log pkglogger.Logger) *WebhookHandler {
	return &WebhookHandler{secret: secret, notifier: notifier, logger: log}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With(zap.String("request_id", middleware.GetReqID(r.Context())))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}
	logger.LogRequest(log, r, body)

	if h.secret != "" {
		ok, err := hmac.Verify(h.secret, body, r.Header.Get(SignatureHeader))
		if err != nil || !ok {
			log.Warn("rejected webhook with invalid signature", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
			return
		}
	}

	event, err := models.ParseWebhookEvent(body)
	if err != nil {
		log.Warn("rejected webhook with invalid body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be a JSON object"})
		return
	}

	fields := []pkglogger.Field{
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status),
	}
	switch {
	case event.IsCompleted():
		log.Info("payment completed", fields...)
	case event.IsFailed():
		log.Warn("payment failed", fields...)
	default:
		log.Info("webhook received", fields...)
	}

	if h.notifier != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), notifyTimeout)
		defer cancel()
		if err := h.notifier.Notify(ctx, event.Summary()); err != nil {
			log.Warn("failed to forward webhook notification", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports liveness.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
