package authjwt

import "errors"

var (
	// ErrInvalidToken is returned when the token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")

	// ErrInvalidSignature is returned when the token signature is invalid.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrUnknownKey is returned when a token names a signing key that is not published.
	ErrUnknownKey = errors.New("unknown signing key")

	// ErrKeysUnavailable is returned when the signing key set could not be loaded.
	ErrKeysUnavailable = errors.New("signing keys unavailable")

	// ErrWrongAudience is returned when a token was issued for another client.
	ErrWrongAudience = errors.New("token audience not accepted")

	// ErrWrongIssuer is returned when a token comes from an unexpected issuer.
	ErrWrongIssuer = errors.New("token issuer not accepted")
)
