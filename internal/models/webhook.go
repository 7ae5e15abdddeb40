package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Order statuses the processor reports on the webhook.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// WebhookEvent is the part of a processor notification the bridge looks at.
// The processor may send more fields; they are kept in Raw.
type WebhookEvent struct {
	OrderID  string `json:"orderID"`
	Status   string `json:"status"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`

	Raw map[string]any `json:"-"`
}

// ParseWebhookEvent decodes a notification body. The body must be a JSON
// object; every known field is optional.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse webhook body: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse webhook body: not an object")
	}

	event := &WebhookEvent{Raw: raw}
	event.OrderID = stringField(raw, "orderID", "orderId", "order_id")
	event.Status = strings.ToLower(stringField(raw, "status", "orderStatus"))
	event.Amount = stringField(raw, "amount")
	event.Currency = stringField(raw, "currency")

	return event, nil
}

func (e *WebhookEvent) IsCompleted() bool {
	return e.Status == StatusCompleted
}

func (e *WebhookEvent) IsFailed() bool {
	return e.Status == StatusFailed || e.Status == StatusCanceled
}

// Summary is a one-line human readable description for notifications.
func (e *WebhookEvent) Summary() string {
	orderID := e.OrderID
	if orderID == "" {
		orderID = "unknown"
	}
	status := e.Status
	if status == "" {
		status = "unknown"
	}

	summary := fmt.Sprintf("Order %s: %s", orderID, status)
	if e.Amount != "" {
		summary += fmt.Sprintf(" (%s)", strings.TrimSpace(e.Amount+" "+e.Currency))
	}
	return summary
}

// stringField returns the first present key rendered as text. Numbers are
// accepted because processors are loose about amount types.
func stringField(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case float64, bool:
			return fmt.Sprint(t)
		}
	}
	return ""
}
