package crypto

import (
	"errors"
	"fmt"
)

var (
	ErrEncryptionFail = errors.New("encryption failed")
	ErrInvalidKeySize = errors.New("invalid key size, must be exactly 32 bytes")
	ErrDecryptionFail = errors.New("decryption failed")
	ErrInvalidPadding = errors.New("invalid PKCS7 padding")
)

// EncryptionError reports a failure to produce or open ciphertext. Cause is
// one of the sentinel errors above, optionally wrapping the underlying error.
type EncryptionError struct {
	Op    string
	Cause error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *EncryptionError) Unwrap() error {
	return e.Cause
}

func encryptionError(op string, sentinel, cause error) error {
	if cause == nil {
		return &EncryptionError{Op: op, Cause: sentinel}
	}
	return &EncryptionError{Op: op, Cause: fmt.Errorf("%w: %v", sentinel, cause)}
}
