package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer mints tokens the TokenVerifier accepts. It backs the tokengen
// command and tests; the HTTP API has no issuance endpoint.
type Signer struct {
	key    []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewSigner decodes the base64 secret and signs with HS256.
func NewSigner(secretB64 string) (*Signer, error) {
	key, err := DecodeSecret(secretB64)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key, method: jwt.SigningMethodHS256, now: time.Now}, nil
}

// Sign issues a token for subject. A zero ttl produces a token without exp.
func (s *Signer) Sign(subject int64, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Subject:  strconv.FormatInt(subject, 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(s.method, claims).SignedString(s.key)
}
