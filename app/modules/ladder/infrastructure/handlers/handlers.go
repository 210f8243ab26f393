// Package ladderhandlers adapts the ladder service to HTTP.
package ladderhandlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	authservice "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/application"
	ladderservice "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/application"
	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CreateDefaults fill in whatever a create request leaves out.
type CreateDefaults struct {
	Params rating.Params
	Shape  ladderdomain.Shape
}

// LadderHandlers implements Handlers.
type LadderHandlers struct {
	service  ladderservice.Service
	auth     authservice.Service
	defaults CreateDefaults
	clock    clockwork.Clock
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewLadderHandlers creates a new LadderHandlers instance.
func NewLadderHandlers(
	service ladderservice.Service,
	auth authservice.Service,
	defaults CreateDefaults,
	clock clockwork.Clock,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &LadderHandlers{
		service:  service,
		auth:     auth,
		defaults: defaults,
		clock:    clock,
		logger:   logger,
		tracer:   tracer,
	}
}

func (h *LadderHandlers) startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	return h.tracer.Start(r.Context(), "LadderHandlers."+name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("ladder", pathParam(r, "ladder"))),
	)
}

// identity resolves a token to a subject. A missing or invalid token yields
// the anonymous identity; owner-only operations reject that downstream.
func (h *LadderHandlers) identity(ctx context.Context, r *http.Request, bodyToken string) string {
	token := bodyToken
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		return ""
	}

	id, err := h.auth.Authenticate(ctx, token)
	if err != nil {
		if !errors.Is(err, authservice.ErrMissingToken) {
			h.logger.InfoContext(ctx, "Treating caller as anonymous",
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
		}
		return ""
	}
	return id.Subject
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// pathParam returns a decoded chi URL parameter. chi matches against the raw
// path when one is present, so escaped segments arrive still escaped.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
