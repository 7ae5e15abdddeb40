// Package auth turns an order payload into the exact request the processor
// accepts. Two interchangeable schemes exist: the cipher scheme encrypts the
// payload with the API secret and identifies the merchant with an api-key
// header; the signature scheme sends the payload in clear with an HMAC over
// its canonical form.
package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	domainOrder "github.com/VladKovDev/checkout-bridge/internal/domain/order"
)

const (
	HeaderAPIKey      = "api-key"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// Request is an authenticated, ready-to-send body plus the headers it needs.
type Request struct {
	Header http.Header
	Body   []byte
}

type Authenticator interface {
	Scheme() string
	Authenticate(p *domainOrder.Payload) (*Request, error)
}

// New selects the authenticator configured by AUTH_SCHEME.
func New(cfg *config.Config) (Authenticator, error) {
	switch cfg.Processor.AuthScheme {
	case config.AuthSchemeCipher:
		return NewCipher(cfg.Processor.APIKey, cfg.Processor.APISecret)
	case config.AuthSchemeSignature:
		return NewSignature(cfg.Processor.APISecret)
	default:
		return nil, &config.ConfigurationError{Key: "AUTH_SCHEME", Reason: fmt.Sprintf("unsupported scheme %q", cfg.Processor.AuthScheme)}
	}
}

func jsonHeader() http.Header {
	h := http.Header{}
	h.Set(HeaderContentType, ContentTypeJSON)
	return h
}

// marshalJSON encodes v without HTML escaping and without a trailing newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
