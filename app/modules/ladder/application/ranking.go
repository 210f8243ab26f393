package ladderservice

import (
	"context"
	"strings"
	"time"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/Black-And-White-Club/skill-ladder/app/observability/attr"
	"github.com/uptrace/bun"
)

// Ranking returns every player of the ladder ordered by conservative score.
func (s *LadderService) Ranking(ctx context.Context, name string) ([]ladderdomain.Standing, error) {
	return withTelemetry(s, ctx, "Ranking", name, func(ctx context.Context) ([]ladderdomain.Standing, error) {
		if _, err := s.getLadder(ctx, nil, name); err != nil {
			return nil, err
		}
		var rows []ladderdb.Player
		err := ladderdb.WithRetry(ctx, s.retry, func() error {
			var err error
			rows, err = s.repo.ListPlayers(ctx, nil, name)
			return err
		})
		if err != nil {
			return nil, err
		}
		return Standings(toPlayerStates(rows)), nil
	})
}

// History returns a player's beliefs after each of their matches, oldest
// first. Unknown players have an empty history.
func (s *LadderService) History(ctx context.Context, name, player string) ([]ladderdomain.HistoryEntry, error) {
	return withTelemetry(s, ctx, "History", name, func(ctx context.Context) ([]ladderdomain.HistoryEntry, error) {
		if _, err := s.getLadder(ctx, nil, name); err != nil {
			return nil, err
		}
		return s.history(ctx, name, player)
	})
}

func (s *LadderService) history(ctx context.Context, name, player string) ([]ladderdomain.HistoryEntry, error) {
	var rows []ladderdb.HistoryPoint
	err := ladderdb.WithRetry(ctx, s.retry, func() error {
		var err error
		rows, err = s.repo.GetHistory(ctx, nil, name, strings.TrimSpace(player))
		return err
	})
	if err != nil {
		return nil, err
	}
	return toHistoryEntries(rows), nil
}

// Suggest returns up to ladderdomain.SuggestionLimit player names starting
// with prefix, ignoring case, most recently seen first.
func (s *LadderService) Suggest(ctx context.Context, name, prefix string) ([]string, error) {
	return withTelemetry(s, ctx, "Suggest", name, func(ctx context.Context) ([]string, error) {
		if _, err := s.getLadder(ctx, nil, name); err != nil {
			return nil, err
		}
		var rows []ladderdb.Player
		err := ladderdb.WithRetry(ctx, s.retry, func() error {
			var err error
			rows, err = s.repo.SearchPlayers(ctx, nil, name, strings.TrimSpace(prefix), ladderdomain.SuggestionLimit)
			return err
		})
		if err != nil {
			return nil, err
		}
		names := make([]string, len(rows))
		for i, p := range rows {
			names[i] = p.Name
		}
		return names, nil
	})
}

// Reproject rebuilds the ladder's ratings on behalf of its owner. With a
// scheduler configured the work is queued instead.
func (s *LadderService) Reproject(ctx context.Context, name, identity string) (ReprojectionResult, error) {
	return withTelemetry(s, ctx, "Reproject", name, func(ctx context.Context) (ReprojectionResult, error) {
		if identity == "" {
			return ReprojectionResult{}, ladderdomain.ErrUnauthenticated
		}
		ladder, err := s.getLadder(ctx, nil, name)
		if err != nil {
			return ReprojectionResult{}, err
		}
		if ladder.Owner != identity {
			return ReprojectionResult{}, ladderdomain.ErrNotOwner
		}

		if s.scheduler != nil {
			if err := s.scheduler.ScheduleReprojection(ctx, name); err != nil {
				return ReprojectionResult{}, err
			}
			return ReprojectionResult{Queued: true}, nil
		}
		return s.reprojectLadder(ctx, name)
	})
}

// ReprojectLadder rebuilds the ladder's ratings inline. It is the entry point
// for the background worker and the command line.
func (s *LadderService) ReprojectLadder(ctx context.Context, name string) (ReprojectionResult, error) {
	return withTelemetry(s, ctx, "ReprojectLadder", name, func(ctx context.Context) (ReprojectionResult, error) {
		return s.reprojectLadder(ctx, name)
	})
}

func (s *LadderService) reprojectLadder(ctx context.Context, name string) (ReprojectionResult, error) {
	unlock := s.locks.Lock(name)
	defer unlock()

	start := time.Now()
	res, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ReprojectionResult, error) {
		row, err := s.lockLadder(ctx, db, name)
		if err != nil {
			return ReprojectionResult{}, err
		}
		return s.reprojectTx(ctx, db, toDomainLadder(row))
	})
	if err != nil {
		return ReprojectionResult{}, err
	}
	s.reprojected(ctx, name, res, time.Since(start))
	return res, nil
}

// reprojectTx replays the ledger into a scratch table and swaps it in. The
// caller holds the ladder lock and owns the transaction.
func (s *LadderService) reprojectTx(ctx context.Context, db bun.IDB, ladder *ladderdomain.Ladder) (ReprojectionResult, error) {
	rows, err := s.repo.ListMatches(ctx, db, ladder.Name, ladderdb.MatchQuery{})
	if err != nil {
		return ReprojectionResult{}, err
	}
	proj, err := Replay(ladder.Params, toDomainMatches(rows))
	if err != nil {
		return ReprojectionResult{}, err
	}
	players := proj.Players()
	if err := s.repo.ReplaceProjection(ctx, db, ladder.Name,
		toPlayerRows(ladder.Name, players),
		toHistoryRows(ladder.Name, proj.History()),
	); err != nil {
		return ReprojectionResult{}, err
	}
	return ReprojectionResult{Matches: proj.Matches(), Players: len(players)}, nil
}

func (s *LadderService) reprojected(ctx context.Context, name string, res ReprojectionResult, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordReprojection(ctx, res.Matches, d)
	}
	s.logger.InfoContext(ctx, "Ladder reprojected",
		attr.ExtractCorrelationID(ctx),
		attr.String("ladder", name),
		attr.Int("matches", res.Matches),
		attr.Int("players", res.Players),
		attr.Duration("duration", d),
	)
	s.publish(ctx, ladderdomain.LadderReprojectedTopic, ladderdomain.LadderReprojectedPayload{
		Ladder:  name,
		Matches: res.Matches,
		Players: res.Players,
	})
}
