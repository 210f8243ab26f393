package ladder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	authservice "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/application"
	ladderservice "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/application"
	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	ladderevents "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/events"
	ladderhandlers "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/handlers"
	ladderqueue "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/queue"
	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	ladderrouter "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/router"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/Black-And-White-Club/skill-ladder/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
)

// Module represents the ladder module.
type Module struct {
	LadderService *ladderservice.LadderService
	Handlers      ladderhandlers.Handlers
	queue         ladderqueue.QueueService
	logger        *slog.Logger
	config        *config.Config
	cancelFunc    context.CancelFunc
}

// NewLadderModule wires the ladder service to Postgres, the event publisher
// and, when asynchronous reprojection is enabled, the River queue.
func NewLadderModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	db *bun.DB,
	publisher message.Publisher,
	auth authservice.Service,
	clock clockwork.Clock,
) (*Module, error) {
	logger := obs.Logger.With("module", "ladder")
	logger.InfoContext(ctx, "Initializing ladder module")

	service := ladderservice.NewLadderService(
		ladderdb.NewRepository(db),
		logger,
		obs.Metrics,
		obs.Tracer,
		db,
		PolicyFromConfig(cfg.Ladder),
		ladderservice.WithClock(clock),
		ladderservice.WithEventPublisher(ladderevents.NewPublisher(publisher)),
	)

	module := &Module{
		LadderService: service,
		Handlers: ladderhandlers.NewLadderHandlers(
			service, auth, DefaultsFromConfig(cfg.Ladder.Defaults), clock, logger, obs.Tracer,
		),
		logger: logger,
		config: cfg,
	}

	if cfg.Ladder.AsyncReprojection {
		queue, err := ladderqueue.NewService(ctx, cfg.Postgres.DSN, logger, obs.Metrics, service)
		if err != nil {
			return nil, fmt.Errorf("failed to create reprojection queue: %w", err)
		}
		service.SetReprojectionScheduler(queue)
		module.queue = queue
	}

	return module, nil
}

// Router returns the ladder API routes with their middleware.
func (m *Module) Router(clock clockwork.Clock) *chi.Mux {
	return ladderrouter.NewRouter(m.Handlers, ladderrouter.Options{
		AllowedOrigins: m.config.HTTP.AllowedOrigins,
		RateLimit:      m.config.HTTP.RateLimit,
		RateBurst:      m.config.HTTP.RateBurst,
		Clock:          clock,
	}, m.logger)
}

// Run starts the reprojection workers, if any, and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	m.logger.InfoContext(ctx, "Starting ladder module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if m.queue != nil {
		if err := m.queue.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start reprojection queue", "error", err)
		}
	}

	<-ctx.Done()
	m.logger.Info("Ladder module goroutine stopped")
}

// Close stops the queue and cancels Run.
func (m *Module) Close(ctx context.Context) error {
	m.logger.Info("Stopping ladder module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	if m.queue != nil {
		if err := m.queue.Stop(ctx); err != nil {
			return err
		}
	}
	m.logger.Info("Ladder module stopped")
	return nil
}

// PolicyFromConfig maps configuration onto the service policy.
func PolicyFromConfig(cfg config.LadderConfig) ladderservice.Policy {
	policy := ladderservice.DefaultPolicy()
	policy.RequireIdentityForMatches = cfg.RequireIdentityForMatches
	if cfg.MatchPageSize > 0 {
		policy.MatchPageSize = cfg.MatchPageSize
	}
	return policy
}

// DefaultsFromConfig maps configured creation defaults onto the handler defaults.
func DefaultsFromConfig(d config.LadderDefaults) ladderhandlers.CreateDefaults {
	return ladderhandlers.CreateDefaults{
		Params: rating.Params{
			Mu:              d.Mu,
			Sigma:           d.Sigma,
			Beta:            d.Beta,
			Tau:             d.Tau,
			DrawProbability: d.DrawProbability,
		},
		Shape: ladderdomain.Shape{TeamsCount: d.TeamsCount, PlayersPerTeam: d.PlayersPerTeam},
	}
}
