package ladderservice

import (
	"context"
	"errors"
	"strconv"
	"time"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// maxClockSkew is how far in the future a reported played_at may lie.
const maxClockSkew = time.Minute

type appendResult struct {
	match   ladderdomain.Match
	players []PlayerState
}

// AppendMatch stores a match at the next sequence number and folds it into
// the ratings of the players it names.
func (s *LadderService) AppendMatch(ctx context.Context, req AppendMatchRequest) (*ladderdomain.Match, error) {
	return withTelemetry(s, ctx, "AppendMatch", req.Ladder, func(ctx context.Context) (*ladderdomain.Match, error) {
		if s.policy.RequireIdentityForMatches && req.Reporter == "" {
			return nil, ladderdomain.ErrUnauthenticated
		}

		outcome := req.Outcome.Normalize()
		if err := outcome.Validate(); err != nil {
			return nil, err
		}

		now := s.clock.Now().UTC()
		playedAt := req.PlayedAt.UTC()
		if req.PlayedAt.IsZero() {
			playedAt = now
		}
		if playedAt.After(now.Add(maxClockSkew)) {
			return nil, ladderdomain.Invalid("played_at", "must not be in the future")
		}

		unlock := s.locks.Lock(req.Ladder)
		defer unlock()

		res, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (appendResult, error) {
			row, err := s.lockLadder(ctx, db, req.Ladder)
			if err != nil {
				return appendResult{}, err
			}
			ladder := toDomainLadder(row)

			match := ladderdomain.Match{
				Sequence:   row.NextSequence + 1,
				PlayedAt:   playedAt,
				Outcome:    outcome,
				ReportedBy: req.Reporter,
			}
			if err := s.repo.InsertMatch(ctx, db, &ladderdb.Match{
				Ladder:     ladder.Name,
				Sequence:   match.Sequence,
				PlayedAt:   match.PlayedAt,
				Outcome:    match.Outcome,
				ReportedBy: match.ReportedBy,
				CreatedAt:  now,
			}); err != nil {
				return appendResult{}, err
			}

			seed, err := s.repo.GetPlayers(ctx, db, ladder.Name, outcome.Players())
			if err != nil {
				return appendResult{}, err
			}
			proj := NewProjection(ladder.Params, toPlayerStates(seed))
			updated, records, err := proj.Apply(match)
			if err != nil {
				return appendResult{}, err
			}
			if err := s.repo.UpsertPlayers(ctx, db, toPlayerRows(ladder.Name, updated)); err != nil {
				return appendResult{}, err
			}
			if err := s.repo.InsertHistory(ctx, db, toHistoryRows(ladder.Name, records)); err != nil {
				return appendResult{}, err
			}

			shape := ladder.Shape.Widen(outcome.Shape())
			if err := s.repo.UpdateLadderState(ctx, db, ladder.Name, match.Sequence, shape.TeamsCount, shape.PlayersPerTeam); err != nil {
				return appendResult{}, err
			}
			return appendResult{match: match, players: updated}, nil
		})
		if err != nil {
			return nil, err
		}

		if s.metrics != nil {
			s.metrics.RecordMatchRecorded(ctx)
		}
		s.publish(ctx, ladderdomain.MatchRecordedTopic, ladderdomain.MatchRecordedPayload{
			Ladder:   req.Ladder,
			Sequence: res.match.Sequence,
			PlayedAt: res.match.PlayedAt,
			Outcome:  res.match.Outcome,
			Players:  Standings(res.players),
		})
		return &res.match, nil
	})
}

// RemoveMatch tombstones a match and rebuilds the ladder's ratings without it.
// Only the ladder owner may remove matches.
func (s *LadderService) RemoveMatch(ctx context.Context, name string, sequence int64, identity string) error {
	_, err := withTelemetry(s, ctx, "RemoveMatch", name+"#"+strconv.FormatInt(sequence, 10), func(ctx context.Context) (struct{}, error) {
		if identity == "" {
			return struct{}{}, ladderdomain.ErrUnauthenticated
		}

		unlock := s.locks.Lock(name)
		defer unlock()

		async := s.scheduler != nil
		removedAt := s.clock.Now().UTC()
		var start time.Time

		res, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ReprojectionResult, error) {
			row, err := s.lockLadder(ctx, db, name)
			if err != nil {
				return ReprojectionResult{}, err
			}
			if row.OwnerIdentity != identity {
				return ReprojectionResult{}, ladderdomain.ErrNotOwner
			}

			err = s.repo.MarkMatchRemoved(ctx, db, name, sequence, removedAt)
			if errors.Is(err, ladderdb.ErrNotFound) {
				return ReprojectionResult{}, ladderdomain.ErrMatchNotFound
			}
			if err != nil {
				return ReprojectionResult{}, err
			}

			if async {
				return ReprojectionResult{Queued: true}, nil
			}
			start = time.Now()
			return s.reprojectTx(ctx, db, toDomainLadder(row))
		})
		if err != nil {
			return struct{}{}, err
		}

		if s.metrics != nil {
			s.metrics.RecordMatchRemoved(ctx)
		}
		s.publish(ctx, ladderdomain.MatchRemovedTopic, ladderdomain.MatchRemovedPayload{
			Ladder:    name,
			Sequence:  sequence,
			RemovedBy: identity,
			RemovedAt: removedAt,
		})

		if async {
			// The tombstone is committed; a failed enqueue leaves the ladder
			// stale until the next repair.
			if err := s.scheduler.ScheduleReprojection(ctx, name); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, nil
		}
		s.reprojected(ctx, name, res, time.Since(start))
		return struct{}{}, nil
	})
	return err
}

// ListMatches returns a page of non-removed matches. A zero limit uses the
// configured page size.
func (s *LadderService) ListMatches(ctx context.Context, name string, q ladderdomain.MatchQuery) ([]ladderdomain.Match, error) {
	return withTelemetry(s, ctx, "ListMatches", name, func(ctx context.Context) ([]ladderdomain.Match, error) {
		switch {
		case q.Limit < 0:
			return nil, ladderdomain.Invalid("limit", "must not be negative")
		case q.Offset < 0:
			return nil, ladderdomain.Invalid("offset", "must not be negative")
		case q.Limit == 0:
			q.Limit = s.policy.MatchPageSize
		case q.Limit > s.policy.MaxMatchPageSize:
			q.Limit = s.policy.MaxMatchPageSize
		}

		if _, err := s.getLadder(ctx, nil, name); err != nil {
			return nil, err
		}

		var rows []ladderdb.Match
		err := ladderdb.WithRetry(ctx, s.retry, func() error {
			var err error
			rows, err = s.repo.ListMatches(ctx, nil, name, ladderdb.MatchQuery{
				Limit:       q.Limit,
				Offset:      q.Offset,
				NewestFirst: q.NewestFirst,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		return toDomainMatches(rows), nil
	})
}
