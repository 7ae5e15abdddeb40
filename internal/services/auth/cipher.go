package auth

import (
	"encoding/json"
	"fmt"

	"github.com/VladKovDev/checkout-bridge/internal/config"
	domainOrder "github.com/VladKovDev/checkout-bridge/internal/domain/order"
	"github.com/VladKovDev/checkout-bridge/internal/infrastructure/crypto"
)

// CipherEnvelope is the request body of the cipher scheme.
type CipherEnvelope struct {
	Data string `json:"data"`
}

type cipherAuthenticator struct {
	apiKey    string
	encryptor crypto.Encryptor
}

// NewCipher builds the cipher-scheme authenticator. The UTF-8 bytes of secret
// are the AES-256 key, so secret must be exactly 32 bytes long.
func NewCipher(apiKey, secret string) (Authenticator, error) {
	enc, err := crypto.NewCBCEncryptor([]byte(secret))
	if err != nil {
		return nil, err
	}
	return &cipherAuthenticator{apiKey: apiKey, encryptor: enc}, nil
}

func (a *cipherAuthenticator) Scheme() string {
	return config.AuthSchemeCipher
}

func (a *cipherAuthenticator) Authenticate(p *domainOrder.Payload) (*Request, error) {
	data, err := encryptPayload(a.encryptor, p)
	if err != nil {
		return nil, err
	}

	body, err := marshalJSON(CipherEnvelope{Data: data})
	if err != nil {
		return nil, &crypto.EncryptionError{Op: "encode envelope", Cause: fmt.Errorf("%w: %v", crypto.ErrEncryptionFail, err)}
	}

	header := jsonHeader()
	header.Set(HeaderAPIKey, a.apiKey)
	return &Request{Header: header, Body: body}, nil
}

// Encrypt serializes p as JSON and returns base64(IV || AES-256-CBC ciphertext)
// under secret.
func Encrypt(secret string, p *domainOrder.Payload) (string, error) {
	enc, err := crypto.NewCBCEncryptor([]byte(secret))
	if err != nil {
		return "", err
	}
	return encryptPayload(enc, p)
}

// Decrypt reverses Encrypt.
func Decrypt(secret, data string) (*domainOrder.Payload, error) {
	enc, err := crypto.NewCBCEncryptor([]byte(secret))
	if err != nil {
		return nil, err
	}

	plain, err := crypto.DecryptFromBase64(enc, data)
	if err != nil {
		return nil, err
	}

	var p domainOrder.Payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return nil, &crypto.EncryptionError{Op: "decode payload", Cause: fmt.Errorf("%w: %v", crypto.ErrDecryptionFail, err)}
	}
	return &p, nil
}

func encryptPayload(enc crypto.Encryptor, p *domainOrder.Payload) (string, error) {
	plain, err := marshalJSON(p)
	if err != nil {
		return "", &crypto.EncryptionError{Op: "encode payload", Cause: fmt.Errorf("%w: %v", crypto.ErrEncryptionFail, err)}
	}
	return crypto.EncryptToBase64(enc, plain)
}
