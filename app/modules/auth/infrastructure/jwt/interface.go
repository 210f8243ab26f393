package authjwt

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/domain"
)

// Verifier resolves a bearer token to a verified identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*authdomain.Identity, error)
}

// Provider issues and verifies HMAC-signed tokens.
type Provider interface {
	Verifier

	// GenerateToken creates a signed token for subject.
	GenerateToken(subject string, ttl time.Duration) (string, error)
}
