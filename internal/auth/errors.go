package auth

import "errors"

var (
	// ErrInvalidSecret is returned when the signing secret is not usable.
	ErrInvalidSecret = errors.New("auth: signing secret must be non-empty base64")
	// ErrIdentityNotFound is returned when a verified subject has no identity record.
	ErrIdentityNotFound = errors.New("auth: identity not found")
)
