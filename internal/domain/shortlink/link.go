// Package shortlink holds short URL codes and target validation.
package shortlink

import (
	"crypto/rand"
	"io"
	"math/big"
	"net/url"
	"strings"

	"github.com/appforge/backend/internal/domain/shared"
)

const (
	// CodeLength is the number of base62 characters in a code
	CodeLength = 7
	// MaxURLLength bounds the stored target
	MaxURLLength = 2048

	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// NewCode draws a random base62 code from r (crypto/rand when nil)
func NewCode(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	max := big.NewInt(int64(len(alphabet)))
	var sb strings.Builder
	sb.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(r, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[n.Int64()])
	}
	return sb.String(), nil
}

// ValidCode reports whether code has the shape NewCode produces
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(alphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// ValidateTarget accepts absolute http and https URLs with a host
func ValidateTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", shared.ErrInvalidInput.WithMessage("url is required")
	}
	if len(raw) > MaxURLLength {
		return "", shared.ErrInvalidInput.WithMessage("url is too long")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", shared.ErrInvalidInput.WithMessage("url is malformed")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", shared.ErrInvalidInput.WithMessage("url must use http or https")
	}
	if u.Host == "" {
		return "", shared.ErrInvalidInput.WithMessage("url must have a host")
	}
	return u.String(), nil
}
