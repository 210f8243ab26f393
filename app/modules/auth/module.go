package auth

import (
	"context"
	"fmt"
	"log/slog"

	authservice "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/application"
	authjwt "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/Black-And-White-Club/skill-ladder/config"
	"github.com/jonboulle/clockwork"
)

// Module represents the auth module.
type Module struct {
	service authservice.Service
	logger  *slog.Logger
}

// NewModule creates a new auth module for the configured auth mode.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	clock clockwork.Clock,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing auth module", "mode", cfg.Auth.Mode)

	var (
		verifier authjwt.Verifier
		issuer   authjwt.Provider
	)
	switch cfg.Auth.Mode {
	case config.AuthModeGoogle:
		verifier = authjwt.NewGoogleVerifier(ctx, cfg.Auth.GoogleClientIDs, authjwt.WithClock(clock))
	case config.AuthModeHMAC:
		issuer = authjwt.NewProvider(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, clock)
		verifier = issuer
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}

	return &Module{
		service: authservice.NewService(verifier, issuer, logger, obs.Tracer),
		logger:  logger,
	}, nil
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}
