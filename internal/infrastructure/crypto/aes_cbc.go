package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
)

// KeySize is the only accepted key length (AES-256).
const KeySize = 32

type aesCBCEncryptor struct {
	block  cipher.Block
	random io.Reader
}

// NewCBCEncryptor returns an AES-256-CBC encryptor. Every call to Encrypt
// draws a fresh IV and prepends it to the ciphertext. The key is never
// truncated or padded: anything but 32 bytes is rejected.
func NewCBCEncryptor(key []byte) (Encryptor, error) {
	enc, err := newCBCEncryptor(key, rand.Reader)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func newCBCEncryptor(key []byte, random io.Reader) (*aesCBCEncryptor, error) {
	if len(key) != KeySize {
		return nil, encryptionError("new cipher", ErrInvalidKeySize, nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, encryptionError("new cipher", ErrEncryptionFail, err)
	}

	return &aesCBCEncryptor{block: block, random: random}, nil
}

func (e *aesCBCEncryptor) Encrypt(plainText []byte) ([]byte, error) {
	out := make([]byte, aes.BlockSize, aes.BlockSize+len(plainText)+aes.BlockSize)
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(e.random, iv); err != nil {
		return nil, encryptionError("encrypt", ErrEncryptionFail, err)
	}

	padded := padPKCS7(plainText, aes.BlockSize)
	cipherText := make([]byte, len(padded))
	cipher.NewCBCEncrypter(e.block, iv).CryptBlocks(cipherText, padded)

	return append(out, cipherText...), nil
}

func (e *aesCBCEncryptor) Decrypt(cipherText []byte) ([]byte, error) {
	if len(cipherText) < 2*aes.BlockSize || len(cipherText)%aes.BlockSize != 0 {
		return nil, encryptionError("decrypt", ErrDecryptionFail, nil)
	}

	iv := cipherText[:aes.BlockSize]
	body := cipherText[aes.BlockSize:]

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(e.block, iv).CryptBlocks(plain, body)

	unpadded, err := unpadPKCS7(plain, aes.BlockSize)
	if err != nil {
		return nil, encryptionError("decrypt", ErrDecryptionFail, err)
	}
	return unpadded, nil
}

// EncryptToBase64 encrypts plainText and returns base64(IV || ciphertext).
func EncryptToBase64(enc Encryptor, plainText []byte) (string, error) {
	cipherText, err := enc.Encrypt(plainText)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(cipherText), nil
}

// DecryptFromBase64 reverses EncryptToBase64.
func DecryptFromBase64(enc Encryptor, encoded string) ([]byte, error) {
	cipherText, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, encryptionError("decode", ErrDecryptionFail, err)
	}
	return enc.Decrypt(cipherText)
}

// padPKCS7 always appends between 1 and blockSize bytes, each holding the pad length.
func padPKCS7(b []byte, blockSize int) []byte {
	padLen := blockSize - len(b)%blockSize
	out := make([]byte, len(b), len(b)+padLen)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func unpadPKCS7(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, ErrInvalidPadding
	}
	padLen := int(b[len(b)-1])
	if padLen < 1 || padLen > blockSize {
		return nil, ErrInvalidPadding
	}
	for _, p := range b[len(b)-padLen:] {
		if int(p) != padLen {
			return nil, ErrInvalidPadding
		}
	}
	return b[:len(b)-padLen], nil
}
