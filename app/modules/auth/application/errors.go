package authservice

import "errors"

var (
	// ErrInvalidToken is returned when the token is invalid.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrMissingToken is returned when no token is provided.
	ErrMissingToken = errors.New("missing authentication token")

	// ErrIssuingUnsupported is returned when tokens are verified by a third party
	// and cannot be minted locally.
	ErrIssuingUnsupported = errors.New("token issuing is not supported in this auth mode")
)
