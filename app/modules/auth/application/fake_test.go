package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/domain"
)

// ------------------------
// Fake JWT Provider
// ------------------------

type FakeJWTProvider struct {
	trace []string

	GenerateTokenFunc func(subject string, ttl time.Duration) (string, error)
	VerifyFunc        func(ctx context.Context, tokenString string) (*authdomain.Identity, error)
}

func (f *FakeJWTProvider) Trace() []string {
	return f.trace
}

func (f *FakeJWTProvider) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeJWTProvider) GenerateToken(subject string, ttl time.Duration) (string, error) {
	f.record("GenerateToken")
	if f.GenerateTokenFunc != nil {
		return f.GenerateTokenFunc(subject, ttl)
	}
	return "fake-token", nil
}

func (f *FakeJWTProvider) Verify(ctx context.Context, tokenString string) (*authdomain.Identity, error) {
	f.record("Verify")
	if f.VerifyFunc != nil {
		return f.VerifyFunc(ctx, tokenString)
	}
	return &authdomain.Identity{Subject: "test-user"}, nil
}
