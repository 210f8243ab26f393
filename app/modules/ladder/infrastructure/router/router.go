// Package ladderrouter wires the ladder HTTP handlers onto a chi router.
package ladderrouter

import (
	"log/slog"
	"net/http"

	ladderhandlers "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/handlers"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// Options configure the router's middleware.
type Options struct {
	AllowedOrigins []string
	// RateLimit is requests per second per client IP on write routes; zero disables it.
	RateLimit float64
	RateBurst int
	Clock     clockwork.Clock
}

// NewRouter returns a router serving the ladder API. Callers may register more
// routes on it, such as health and metrics endpoints.
func NewRouter(h ladderhandlers.Handlers, opts Options, logger *slog.Logger) *chi.Mux {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	r := chi.NewRouter()
	r.Use(CorrelationID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         600,
	}).Handler)

	var limiter *IPRateLimiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = NewIPRateLimiter(rate.Limit(opts.RateLimit), burst, opts.Clock)
	}
	limited := RateLimit(limiter)

	r.With(limited).Post("/user/owned_by", h.HandleOwnedBy)

	r.Route("/{ladder}", func(r chi.Router) {
		r.Get("/exists", h.HandleExists)
		r.Get("/match_shape", h.HandleMatchShape)
		r.Get("/settings", h.HandleSettings)
		r.Get("/ranking", h.HandleRanking)
		r.Get("/matches", h.HandleMatches)
		r.Post("/matches/{limit}", h.HandleMatches)
		r.Post("/matches/{limit}/{offset}", h.HandleMatches)
		r.Get("/suggest_players/{prefix}", h.HandleSuggestPlayers)
		r.Get("/history/{player}", h.HandleHistory)
		r.Get("/history/{player}/chart.png", h.HandleHistoryChart)
		r.Get("/export.xlsx", h.HandleExport)

		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Post("/game", h.HandleGame)
			r.Post("/remove", h.HandleRemove)
			r.Post("/create", h.HandleCreate)
			r.Post("/settings", h.HandleUpdateSettings)
			r.Post("/owned", h.HandleOwned)
			r.Post("/reproject", h.HandleReproject)
		})
	})

	return r
}
