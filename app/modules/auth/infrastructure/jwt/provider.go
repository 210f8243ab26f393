package authjwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ladderClaims represents the JWT claims structure.
type ladderClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// provider implements the Provider interface.
type provider struct {
	secret []byte
	issuer string
	clock  clockwork.Clock
}

// NewProvider creates a new HMAC JWT provider.
func NewProvider(secret, issuer string, clock clockwork.Clock) Provider {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &provider{
		secret: []byte(secret),
		issuer: issuer,
		clock:  clock,
	}
}

// GenerateToken creates a signed JWT token for subject.
func (p *provider) GenerateToken(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("failed to sign token: %w", ErrInvalidToken)
	}
	now := p.clock.Now()
	claims := &ladderClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			Issuer:    p.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Verify validates a token and returns the identity it carries.
func (p *provider) Verify(_ context.Context, tokenString string) (*authdomain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.clock.Now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &ladderClaims{}, func(token *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*ladderClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	identity := &authdomain.Identity{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
		Email:   claims.Email,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, ErrUnknownKey):
		return ErrUnknownKey
	default:
		return ErrInvalidToken
	}
}
