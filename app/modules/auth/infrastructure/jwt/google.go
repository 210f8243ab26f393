package authjwt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	authdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/domain"
	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// GoogleCertsURL publishes the keys Google signs ID tokens with.
const GoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// keySetRetry bounds how often a failed initial key download is retried.
const keySetRetry = 10 * time.Second

var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

type googleClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// GoogleVerifier checks Google ID tokens: RS256 signatures against the
// published key set, an accepted audience and a Google issuer. The key set is
// downloaded on first use and refreshed in the background; unknown key ids
// trigger at most one rate-limited refresh.
type GoogleVerifier struct {
	clientIDs []string
	certsURL  string
	clock     clockwork.Clock
	// keysCtx scopes the background refresh of the key set.
	keysCtx context.Context

	keys      atomic.Pointer[keyfunc.Keyfunc]
	loadMu    sync.Mutex
	loadLimit *rate.Limiter
}

// GoogleOption customises a GoogleVerifier.
type GoogleOption func(*GoogleVerifier)

// WithCertsURL overrides where keys are fetched from.
func WithCertsURL(url string) GoogleOption {
	return func(v *GoogleVerifier) { v.certsURL = url }
}

// WithClock overrides the clock used for expiry checks.
func WithClock(c clockwork.Clock) GoogleOption {
	return func(v *GoogleVerifier) { v.clock = c }
}

// NewGoogleVerifier accepts tokens whose audience is one of clientIDs. The key
// set refreshes until ctx is cancelled.
func NewGoogleVerifier(ctx context.Context, clientIDs []string, opts ...GoogleOption) *GoogleVerifier {
	v := &GoogleVerifier{
		clientIDs: clientIDs,
		certsURL:  GoogleCertsURL,
		clock:     clockwork.NewRealClock(),
		keysCtx:   ctx,
		loadLimit: rate.NewLimiter(rate.Every(keySetRetry), 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates an ID token and returns its subject as the identity.
func (v *GoogleVerifier) Verify(ctx context.Context, tokenString string) (*authdomain.Identity, error) {
	keys, err := v.keySet()
	if err != nil {
		return nil, err
	}

	lookup := keys.KeyfuncCtx(ctx)
	token, err := jwt.ParseWithClaims(tokenString, &googleClaims{}, func(token *jwt.Token) (any, error) {
		key, err := lookup(token)
		if errors.Is(err, jwkset.ErrKeyNotFound) {
			return nil, ErrUnknownKey
		}
		return key, err
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, mapParseError(err)
	}

	claims, ok := token.Claims.(*googleClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if !slices.Contains(googleIssuers, claims.Issuer) {
		return nil, ErrWrongIssuer
	}
	if !slices.ContainsFunc(claims.Audience, func(aud string) bool { return slices.Contains(v.clientIDs, aud) }) {
		return nil, ErrWrongAudience
	}

	return &authdomain.Identity{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// keySet returns the loaded key set, downloading it on first use. Failed
// downloads are retried at most once per keySetRetry.
func (v *GoogleVerifier) keySet() (keyfunc.Keyfunc, error) {
	if k := v.keys.Load(); k != nil {
		return *k, nil
	}

	v.loadMu.Lock()
	defer v.loadMu.Unlock()
	if k := v.keys.Load(); k != nil {
		return *k, nil
	}
	if !v.loadLimit.Allow() {
		return nil, ErrKeysUnavailable
	}

	k, err := keyfunc.NewDefaultCtx(v.keysCtx, []string{v.certsURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeysUnavailable, err)
	}
	v.keys.Store(&k)
	return k, nil
}

var _ Verifier = (*GoogleVerifier)(nil)
