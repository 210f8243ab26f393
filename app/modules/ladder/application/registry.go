package ladderservice

import (
	"context"
	"errors"
	"time"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// CreateLadder registers a new ladder owned by req.Owner.
func (s *LadderService) CreateLadder(ctx context.Context, req CreateLadderRequest) (*ladderdomain.Ladder, error) {
	return withTelemetry(s, ctx, "CreateLadder", req.Name, func(ctx context.Context) (*ladderdomain.Ladder, error) {
		if req.Owner == "" {
			return nil, ladderdomain.ErrUnauthenticated
		}
		if err := ladderdomain.ValidateLadderName(req.Name); err != nil {
			return nil, err
		}
		if err := req.Params.Validate(); err != nil {
			return nil, ladderdomain.Invalid("params", "%v", err)
		}
		if req.Shape.TeamsCount < 1 || req.Shape.PlayersPerTeam < 1 {
			return nil, ladderdomain.Invalid("shape", "teams_count and players_per_team must be at least 1")
		}

		ladder := &ladderdomain.Ladder{
			Name:      req.Name,
			Params:    req.Params,
			Shape:     req.Shape,
			Owner:     req.Owner,
			CreatedAt: s.clock.Now().UTC(),
		}

		_, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (struct{}, error) {
			return struct{}{}, s.repo.CreateLadder(ctx, db, toLadderRow(ladder))
		})
		if errors.Is(err, ladderdb.ErrDuplicate) {
			return nil, ladderdomain.ErrLadderExists
		}
		if err != nil {
			return nil, err
		}

		s.publish(ctx, ladderdomain.LadderCreatedTopic, ladderdomain.LadderCreatedPayload{
			Ladder:    ladder.Name,
			Owner:     ladder.Owner,
			CreatedAt: ladder.CreatedAt,
		})
		return ladder, nil
	})
}

// GetLadder returns a ladder's configuration, or ErrLadderNotFound.
func (s *LadderService) GetLadder(ctx context.Context, name string) (*ladderdomain.Ladder, error) {
	return withTelemetry(s, ctx, "GetLadder", name, func(ctx context.Context) (*ladderdomain.Ladder, error) {
		return s.getLadder(ctx, nil, name)
	})
}

// LadderExists reports whether name is registered.
func (s *LadderService) LadderExists(ctx context.Context, name string) (bool, error) {
	return withTelemetry(s, ctx, "LadderExists", name, func(ctx context.Context) (bool, error) {
		_, err := s.getLadder(ctx, nil, name)
		if errors.Is(err, ladderdomain.ErrLadderNotFound) {
			return false, nil
		}
		return err == nil, err
	})
}

// MatchShape returns the widest shape reported on the ladder so far.
func (s *LadderService) MatchShape(ctx context.Context, name string) (ladderdomain.Shape, error) {
	return withTelemetry(s, ctx, "MatchShape", name, func(ctx context.Context) (ladderdomain.Shape, error) {
		ladder, err := s.getLadder(ctx, nil, name)
		if err != nil {
			return ladderdomain.Shape{}, err
		}
		return ladder.Shape, nil
	})
}

// IsOwner reports whether identity owns the ladder. An empty identity owns nothing.
func (s *LadderService) IsOwner(ctx context.Context, name, identity string) (bool, error) {
	return withTelemetry(s, ctx, "IsOwner", name, func(ctx context.Context) (bool, error) {
		ladder, err := s.getLadder(ctx, nil, name)
		if err != nil {
			return false, err
		}
		return identity != "" && ladder.Owner == identity, nil
	})
}

// UpdateSettings replaces the rating parameters of a ladder owned by
// req.Identity and reprojects every rating under them.
func (s *LadderService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*ladderdomain.Ladder, error) {
	return withTelemetry(s, ctx, "UpdateSettings", req.Name, func(ctx context.Context) (*ladderdomain.Ladder, error) {
		if req.Identity == "" {
			return nil, ladderdomain.ErrUnauthenticated
		}
		if err := req.Params.Validate(); err != nil {
			return nil, ladderdomain.Invalid("params", "%v", err)
		}

		unlock := s.locks.Lock(req.Name)
		defer unlock()

		async := s.scheduler != nil
		updatedAt := s.clock.Now().UTC()
		var (
			ladder *ladderdomain.Ladder
			start  time.Time
		)

		res, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ReprojectionResult, error) {
			row, err := s.lockLadder(ctx, db, req.Name)
			if err != nil {
				return ReprojectionResult{}, err
			}
			if row.OwnerIdentity != req.Identity {
				return ReprojectionResult{}, ladderdomain.ErrNotOwner
			}

			ladder = toDomainLadder(row)
			ladder.Params = req.Params
			if err := s.repo.UpdateLadderParams(ctx, db, toLadderRow(ladder)); err != nil {
				if errors.Is(err, ladderdb.ErrNotFound) {
					return ReprojectionResult{}, ladderdomain.ErrLadderNotFound
				}
				return ReprojectionResult{}, err
			}

			if async {
				return ReprojectionResult{Queued: true}, nil
			}
			start = time.Now()
			return s.reprojectTx(ctx, db, ladder)
		})
		if err != nil {
			return nil, err
		}

		s.publish(ctx, ladderdomain.LadderSettingsUpdatedTopic, ladderdomain.LadderSettingsUpdatedPayload{
			Ladder:    ladder.Name,
			Params:    ladder.Params,
			UpdatedBy: req.Identity,
			UpdatedAt: updatedAt,
		})

		if async {
			// The new parameters are committed; ratings stay stale until
			// the queued job or the next repair runs.
			if err := s.scheduler.ScheduleReprojection(ctx, ladder.Name); err != nil {
				return nil, err
			}
			return ladder, nil
		}
		s.reprojected(ctx, ladder.Name, res, time.Since(start))
		return ladder, nil
	})
}

// OwnedBy lists the ladders owned by identity.
func (s *LadderService) OwnedBy(ctx context.Context, identity string) ([]string, error) {
	return withTelemetry(s, ctx, "OwnedBy", identity, func(ctx context.Context) ([]string, error) {
		if identity == "" {
			return nil, ladderdomain.ErrUnauthenticated
		}
		var names []string
		err := ladderdb.WithRetry(ctx, s.retry, func() error {
			var err error
			names, err = s.repo.ListLaddersByOwner(ctx, nil, identity)
			return err
		})
		if err != nil {
			return nil, err
		}
		if names == nil {
			names = []string{}
		}
		return names, nil
	})
}

// getLadder reads a ladder, retrying transient failures.
func (s *LadderService) getLadder(ctx context.Context, db bun.IDB, name string) (*ladderdomain.Ladder, error) {
	var row *ladderdb.Ladder
	err := ladderdb.WithRetry(ctx, s.retry, func() error {
		var err error
		row, err = s.repo.GetLadder(ctx, db, name)
		return err
	})
	if errors.Is(err, ladderdb.ErrNotFound) {
		return nil, ladderdomain.ErrLadderNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainLadder(row), nil
}

// lockLadder takes the ladder row lock inside a transaction.
func (s *LadderService) lockLadder(ctx context.Context, db bun.IDB, name string) (*ladderdb.Ladder, error) {
	row, err := s.repo.LockLadder(ctx, db, name)
	if errors.Is(err, ladderdb.ErrNotFound) {
		return nil, ladderdomain.ErrLadderNotFound
	}
	return row, err
}
