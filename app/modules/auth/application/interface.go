package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/domain"
)

// Service resolves bearer tokens into identities.
type Service interface {
	// Authenticate verifies token and returns the caller's identity.
	// An empty token yields ErrMissingToken.
	Authenticate(ctx context.Context, token string) (*authdomain.Identity, error)

	// IssueToken mints a token for subject. Only available with a token issuer.
	IssueToken(ctx context.Context, subject string, ttl time.Duration) (string, error)
}
