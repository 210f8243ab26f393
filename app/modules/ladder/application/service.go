package ladderservice

import (
	"log/slog"

	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/jonboulle/clockwork"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Policy holds the configurable rules of the ladder service.
type Policy struct {
	// RequireIdentityForMatches rejects anonymous match reports.
	RequireIdentityForMatches bool
	// MatchPageSize is used when a listing does not ask for a limit.
	MatchPageSize int
	// MaxMatchPageSize caps any listing.
	MaxMatchPageSize int
}

// DefaultPolicy allows anonymous reporting and pages matches by 42.
func DefaultPolicy() Policy {
	return Policy{MatchPageSize: 42, MaxMatchPageSize: 1000}
}

// LadderService implements the Service interface.
type LadderService struct {
	repo      ladderdb.Repository
	logger    *slog.Logger
	metrics   observability.LadderMetrics
	tracer    trace.Tracer
	db        *bun.DB
	clock     clockwork.Clock
	policy    Policy
	retry     ladderdb.RetryPolicy
	events    EventPublisher
	scheduler ReprojectionScheduler
	locks     *ladderLocks
}

// Option customises a LadderService.
type Option func(*LadderService)

// WithClock sets the clock used for timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *LadderService) { s.clock = c }
}

// WithEventPublisher sets where domain events are sent.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *LadderService) { s.events = p }
}

// WithRetryPolicy overrides the transient-error retry policy.
func WithRetryPolicy(p ladderdb.RetryPolicy) Option {
	return func(s *LadderService) { s.retry = p }
}

// NewLadderService creates a new LadderService.
func NewLadderService(
	repo ladderdb.Repository,
	logger *slog.Logger,
	metrics observability.LadderMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	policy Policy,
	opts ...Option,
) *LadderService {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MatchPageSize <= 0 {
		policy.MatchPageSize = DefaultPolicy().MatchPageSize
	}
	if policy.MaxMatchPageSize < policy.MatchPageSize {
		policy.MaxMatchPageSize = max(DefaultPolicy().MaxMatchPageSize, policy.MatchPageSize)
	}
	s := &LadderService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		clock:   clockwork.NewRealClock(),
		policy:  policy,
		retry:   ladderdb.DefaultRetryPolicy(),
		locks:   newLadderLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetReprojectionScheduler routes reprojections to a background queue. With
// no scheduler they run inline under the ladder lock.
func (s *LadderService) SetReprojectionScheduler(scheduler ReprojectionScheduler) {
	s.scheduler = scheduler
}

var _ Service = (*LadderService)(nil)
