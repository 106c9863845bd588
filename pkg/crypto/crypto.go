package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const derivedKeyLength = 32

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}

// DeriveKey expands the application secret into a purpose-bound key using HKDF-SHA256.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("crypto: secret is required")
	}
	reader := hkdf.New(sha256.New, secret, nil, []byte(purpose))
	key := make([]byte, derivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Signer produces and verifies "<value>.<mac>" tokens.
type Signer struct {
	key []byte
}

// NewSigner derives a signing key for purpose from secret.
func NewSigner(secret, purpose string) (*Signer, error) {
	key, err := DeriveKey([]byte(secret), purpose)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// Sign appends a MAC to value.
func (s *Signer) Sign(value string) string {
	return value + "." + s.mac(value)
}

// Verify returns the embedded value when the token's MAC is valid.
func (s *Signer) Verify(token string) (string, bool) {
	idx := strings.LastIndexByte(token, '.')
	if idx <= 0 || idx == len(token)-1 {
		return "", false
	}
	value, sig := token[:idx], token[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(s.mac(value))) {
		return "", false
	}
	return value, true
}

func (s *Signer) mac(value string) string {
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
