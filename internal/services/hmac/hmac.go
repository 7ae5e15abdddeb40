package hmac

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	ErrEmptySecret    = errors.New("secret key is empty")
	ErrEmptySignature = errors.New("received signature is empty")
)

// Canonicalize serializes v as compact JSON with object keys sorted
// lexicographically at every depth. HTML characters are written verbatim so
// URLs with query strings hash the same way the processor sees them.
//
// The output is pure ASCII: every non-ASCII character is written as a
// lowercase \uXXXX escape, with a surrogate pair above U+FFFF. This is the
// form json.dumps(sort_keys=True, separators=(",", ":")) produces.
//
// Numbers keep their textual form, so an integer timestamp stays an integer
// in the output.
func Canonicalize(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	// Round-tripping through map[string]any is what sorts struct fields:
	// encoding/json writes map keys in sorted order.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("failed to encode canonical payload: %w", err)
	}

	return escapeNonASCII(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// escapeNonASCII rewrites every non-ASCII rune of a JSON document as \u
// escapes. Non-ASCII bytes only occur inside string literals, so the result
// is the same JSON value.
func escapeNonASCII(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for len(b) > 0 {
		if b[0] < utf8.RuneSelf {
			out = append(out, b[0])
			b = b[1:]
			continue
		}

		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}

// Sign returns the lowercase hex HMAC-SHA256 of message under secret.
func Sign(secret string, message []byte) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// CreateSignature canonicalizes data and signs the result.
func CreateSignature(data any, secret string) (string, error) {
	canonical, err := Canonicalize(data)
	if err != nil {
		return "", err
	}
	return Sign(secret, canonical)
}

// Verify checks a hex signature over message in constant time. Hex case is
// ignored.
func Verify(secret string, message []byte, received string) (bool, error) {
	if received == "" {
		return false, ErrEmptySignature
	}

	expected, err := Sign(secret, message)
	if err != nil {
		return false, err
	}

	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(received)))
	if err != nil {
		return false, nil
	}
	want, _ := hex.DecodeString(expected)

	return hmac.Equal(want, got), nil
}
