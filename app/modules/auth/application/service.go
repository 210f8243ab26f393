package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTokenTTL applies when IssueToken is called without a ttl.
const DefaultTokenTTL = 24 * time.Hour

// service implements the Service interface.
type service struct {
	verifier authjwt.Verifier
	issuer   authjwt.Provider
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewService creates a new auth service. issuer may be nil when tokens come
// from an external identity provider.
func NewService(
	verifier authjwt.Verifier,
	issuer authjwt.Provider,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		verifier: verifier,
		issuer:   issuer,
		logger:   logger,
		tracer:   tracer,
	}
}

// Authenticate validates a token and returns the identity if valid.
func (s *service) Authenticate(ctx context.Context, tokenString string) (*authdomain.Identity, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	identity, err := s.verifier.Verify(ctx, tokenString)
	if err != nil {
		s.logger.WarnContext(ctx, "Token validation failed",
			attr.ExtractCorrelationID(ctx),
			attr.Error(err),
		)
		span.RecordError(err)
		if errors.Is(err, authjwt.ErrExpiredToken) {
			return nil, fmt.Errorf("%w: %w", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	s.logger.DebugContext(ctx, "Token validated successfully",
		attr.ExtractCorrelationID(ctx),
		attr.String("subject", identity.Subject),
	)

	return identity, nil
}

// IssueToken mints a signed token for subject.
func (s *service) IssueToken(ctx context.Context, subject string, ttl time.Duration) (string, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.IssueToken")
	defer span.End()

	if s.issuer == nil {
		return "", ErrIssuingUnsupported
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	token, err := s.issuer.GenerateToken(subject, ttl)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "Token issued",
		attr.String("subject", subject),
		attr.Duration("ttl", ttl),
	)
	return token, nil
}
