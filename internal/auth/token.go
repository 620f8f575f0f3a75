package auth

import (
	"encoding/base64"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// TokenVerifier validates HMAC signed bearer tokens. It is safe for
// concurrent use; the key never changes after construction.
type TokenVerifier struct {
	key    []byte
	parser *jwt.Parser
}

// NewTokenVerifier decodes the base64 signing secret.
func NewTokenVerifier(secretB64 string) (*TokenVerifier, error) {
	key, err := DecodeSecret(secretB64)
	if err != nil {
		return nil, err
	}
	return &TokenVerifier{
		key:    key,
		parser: jwt.NewParser(jwt.WithValidMethods(hmacMethods)),
	}, nil
}

// DecodeSecret decodes a standard base64 secret, rejecting empty values.
func DecodeSecret(secretB64 string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

// Verify checks the signature and expiry of token and returns its subject.
// Any failure yields (0, false).
func (v *TokenVerifier) Verify(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}
	var claims jwt.RegisteredClaims
	parsed, err := v.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil || !parsed.Valid {
		return 0, false
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
