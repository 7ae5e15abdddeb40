package auth

import (
	"errors"
	"fmt"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	domainOrder "github.com/VladKovDev/checkout-bridge/internal/domain/order"
	"github.com/VladKovDev/checkout-bridge/internal/services/hmac"
)

var ErrMissingIdentity = errors.New("signature scheme requires publicKey, uniqueUserId and productId")

type signatureAuthenticator struct {
	secret string
}

func NewSignature(secret string) (Authenticator, error) {
	if secret == "" {
		return nil, &config.ConfigurationError{Key: "API_SECRET", Reason: "is required"}
	}
	return &signatureAuthenticator{secret: secret}, nil
}

func (a *signatureAuthenticator) Scheme() string {
	return config.AuthSchemeSignature
}

func (a *signatureAuthenticator) Authenticate(p *domainOrder.Payload) (*Request, error) {
	signed, err := SignPayload(a.secret, p)
	if err != nil {
		return nil, err
	}

	body, err := marshalJSON(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed payload: %w", err)
	}
	return &Request{Header: jsonHeader(), Body: body}, nil
}

// SignPayload returns a copy of p carrying the signature over its canonical
// form. Any signature already present is ignored when hashing.
func SignPayload(secret string, p *domainOrder.Payload) (*domainOrder.Payload, error) {
	if p.Identity == nil {
		return nil, ErrMissingIdentity
	}

	unsigned := p.Unsigned()
	canonical, err := hmac.Canonicalize(unsigned)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize payload: %w", err)
	}

	signature, err := hmac.Sign(secret, canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to sign payload: %w", err)
	}

	unsigned.Signature = signature
	return &unsigned, nil
}
