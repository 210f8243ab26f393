package ladderqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ladderservice "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/application"
	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
	"github.com/riverqueue/river"
)

// Reprojector runs a full reprojection inline.
type Reprojector interface {
	ReprojectLadder(ctx context.Context, name string) (ladderservice.ReprojectionResult, error)
}

// ReprojectWorker executes ReprojectLadderJob.
type ReprojectWorker struct {
	river.WorkerDefaults[ReprojectLadderJob]
	reprojector Reprojector
	logger      *slog.Logger
}

// NewReprojectWorker creates a worker that delegates to reprojector.
func NewReprojectWorker(logger *slog.Logger, reprojector Reprojector) *ReprojectWorker {
	return &ReprojectWorker{reprojector: reprojector, logger: logger}
}

// Timeout bounds one replay.
func (w *ReprojectWorker) Timeout(*river.Job[ReprojectLadderJob]) time.Duration {
	return 5 * time.Minute
}

// Work replays the ladder. Errors are returned so River retries the job.
func (w *ReprojectWorker) Work(ctx context.Context, job *river.Job[ReprojectLadderJob]) error {
	logger := w.logger.With(
		attr.Int64("job_id", job.ID),
		attr.String("ladder", job.Args.Ladder),
		attr.Int("attempt", job.Attempt),
	)
	logger.InfoContext(ctx, "Processing ladder reprojection job")

	result, err := w.reprojector.ReprojectLadder(ctx, job.Args.Ladder)
	if err != nil {
		logger.ErrorContext(ctx, "Ladder reprojection job failed", attr.Error(err))
		return fmt.Errorf("failed to reproject ladder %q: %w", job.Args.Ladder, err)
	}

	logger.InfoContext(ctx, "Ladder reprojection job completed",
		attr.Int("matches", result.Matches),
		attr.Int("players", result.Players),
	)
	return nil
}
