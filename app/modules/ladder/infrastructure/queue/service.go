// Package ladderqueue runs ladder reprojections in the background on River.
package ladderqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ladderservice "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/application"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const metricsService = "river"

// QueueService schedules and runs reprojection jobs.
type QueueService interface {
	ladderservice.ReprojectionScheduler
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service handles reprojection jobs for the ladder module using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// NewService creates a River client over its own pgx pool. River needs pgx and
// cannot share bun's database/sql connections.
func NewService(ctx context.Context, dsn string, logger *slog.Logger, metrics observability.OperationMetrics, reprojector Reprojector) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_ladder_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	ctxLogger.InfoContext(ctx, "Initializing ladder queue service")

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.ErrorContext(ctx, "Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	client, err := NewClient(pool, ctxLogger, reprojector)
	if err != nil {
		pool.Close()
		ctxLogger.ErrorContext(ctx, "Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, err
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))

	ctxLogger.InfoContext(ctx, "Ladder queue service initialized successfully")
	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: metrics}, nil
}

// NewClient registers the reprojection worker and builds a River client on pool.
func NewClient(pool *pgxpool.Pool, logger *slog.Logger, reprojector Reprojector) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewReprojectWorker(logger, reprojector))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			QueueName:          {MaxWorkers: 4},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}
	return client, nil
}

// ScheduleReprojection enqueues a replay of ladder.
func (s *Service) ScheduleReprojection(ctx context.Context, ladder string) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_reprojection", metricsService)

	ctxLogger := s.logger.With(
		attr.String("ladder", ladder),
		attr.String("operation", "schedule_reprojection"),
		attr.ExtractCorrelationID(ctx),
	)

	result, err := s.client.Insert(ctx, ReprojectLadderJob{Ladder: ladder}, nil)
	if err != nil {
		ctxLogger.ErrorContext(ctx, "Failed to schedule reprojection job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "schedule_reprojection", metricsService)
		return fmt.Errorf("failed to schedule reprojection job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_reprojection", metricsService)
	s.metrics.RecordOperationDuration(ctx, "schedule_reprojection", metricsService, time.Since(start))

	ctxLogger.InfoContext(ctx, "Reprojection job scheduled", attr.Int64("job_id", result.Job.ID))
	return nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)

	s.logger.InfoContext(ctx, "Starting ladder queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.metrics.RecordOperationDuration(ctx, "start_service", metricsService, time.Since(start))
	return nil
}

// Stop drains running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)

	s.logger.InfoContext(ctx, "Stopping ladder queue service")

	err := s.client.Stop(ctx)
	s.pool.Close()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.metrics.RecordOperationDuration(ctx, "stop_service", metricsService, time.Since(start))

	s.logger.InfoContext(ctx, "Ladder queue service stopped")
	return nil
}
