package ladderdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements Repository on top of bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ladder repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// -----------------------------------------------------------------------------
// Ladders
// -----------------------------------------------------------------------------

func (r *Impl) CreateLadder(ctx context.Context, db bun.IDB, ladder *Ladder) error {
	_, err := r.resolveDB(db).NewInsert().Model(ladder).Exec(ctx)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create ladder: %w", err)
	}
	return nil
}

func (r *Impl) GetLadder(ctx context.Context, db bun.IDB, name string) (*Ladder, error) {
	ladder := new(Ladder)
	err := r.resolveDB(db).NewSelect().
		Model(ladder).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ladder: %w", err)
	}
	return ladder, nil
}

func (r *Impl) LockLadder(ctx context.Context, db bun.IDB, name string) (*Ladder, error) {
	ladder := new(Ladder)
	err := r.resolveDB(db).NewSelect().
		Model(ladder).
		Where("name = ?", name).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock ladder: %w", err)
	}
	return ladder, nil
}

func (r *Impl) UpdateLadderState(ctx context.Context, db bun.IDB, name string, nextSequence int64, teamsCount, playersPerTeam int) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Ladder)(nil)).
		Set("next_sequence = ?", nextSequence).
		Set("teams_count = ?", teamsCount).
		Set("players_per_team = ?", playersPerTeam).
		Where("name = ?", name).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update ladder state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) UpdateLadderParams(ctx context.Context, db bun.IDB, ladder *Ladder) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model(ladder).
		Column("mu0", "sigma0", "beta", "tau", "draw_probability").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update ladder params: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) ListLaddersByOwner(ctx context.Context, db bun.IDB, owner string) ([]string, error) {
	var names []string
	err := r.resolveDB(db).NewSelect().
		Model((*Ladder)(nil)).
		Column("name").
		Where("owner_identity = ?", owner).
		Order("name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, fmt.Errorf("failed to list owned ladders: %w", err)
	}
	return names, nil
}

// -----------------------------------------------------------------------------
// Matches
// -----------------------------------------------------------------------------

func (r *Impl) InsertMatch(ctx context.Context, db bun.IDB, match *Match) error {
	if _, err := r.resolveDB(db).NewInsert().Model(match).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, ladder string, sequence int64) (*Match, error) {
	match := new(Match)
	err := r.resolveDB(db).NewSelect().
		Model(match).
		Where("ladder = ?", ladder).
		Where("sequence = ?", sequence).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

func (r *Impl) MarkMatchRemoved(ctx context.Context, db bun.IDB, ladder string, sequence int64, at time.Time) error {
	res, err := r.resolveDB(db).NewUpdate().
		Model((*Match)(nil)).
		Set("removed_at = ?", at).
		Where("ladder = ?", ladder).
		Where("sequence = ?", sequence).
		Where("removed_at IS NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) ListMatches(ctx context.Context, db bun.IDB, ladder string, q MatchQuery) ([]Match, error) {
	var matches []Match
	query := r.resolveDB(db).NewSelect().
		Model(&matches).
		Where("ladder = ?", ladder).
		Where("removed_at IS NULL")
	if q.NewestFirst {
		query = query.Order("sequence DESC")
	} else {
		query = query.Order("sequence ASC")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// -----------------------------------------------------------------------------
// Players and history
// -----------------------------------------------------------------------------

func (r *Impl) GetPlayers(ctx context.Context, db bun.IDB, ladder string, names []string) ([]Player, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var players []Player
	err := r.resolveDB(db).NewSelect().
		Model(&players).
		Where("ladder = ?", ladder).
		Where("name IN (?)", bun.In(names)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	return players, nil
}

func (r *Impl) ListPlayers(ctx context.Context, db bun.IDB, ladder string) ([]Player, error) {
	var players []Player
	err := r.resolveDB(db).NewSelect().
		Model(&players).
		Where("ladder = ?", ladder).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (r *Impl) SearchPlayers(ctx context.Context, db bun.IDB, ladder, prefix string, limit int) ([]Player, error) {
	var players []Player
	err := r.resolveDB(db).NewSelect().
		Model(&players).
		Where("ladder = ?", ladder).
		Where(`lower(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%").
		OrderExpr("last_seen_sequence DESC").
		OrderExpr(`name COLLATE "C" ASC`).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search players: %w", err)
	}
	return players, nil
}

func (r *Impl) UpsertPlayers(ctx context.Context, db bun.IDB, players []Player) error {
	if len(players) == 0 {
		return nil
	}
	_, err := r.resolveDB(db).NewInsert().
		Model(&players).
		On("CONFLICT (ladder, name) DO UPDATE").
		Set("mu = EXCLUDED.mu").
		Set("sigma = EXCLUDED.sigma").
		Set("last_seen_sequence = EXCLUDED.last_seen_sequence").
		Set("games_count = EXCLUDED.games_count").
		Set("wins_count = EXCLUDED.wins_count").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert players: %w", err)
	}
	return nil
}

func (r *Impl) InsertHistory(ctx context.Context, db bun.IDB, points []HistoryPoint) error {
	if len(points) == 0 {
		return nil
	}
	if _, err := r.resolveDB(db).NewInsert().Model(&points).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert history: %w", err)
	}
	return nil
}

func (r *Impl) GetHistory(ctx context.Context, db bun.IDB, ladder, player string) ([]HistoryPoint, error) {
	var points []HistoryPoint
	err := r.resolveDB(db).NewSelect().
		Model(&points).
		Where("ladder = ?", ladder).
		Where("player = ?", player).
		Order("sequence ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return points, nil
}

// insertBatchSize keeps bulk inserts under the Postgres bind-parameter limit.
const insertBatchSize = 1000

func (r *Impl) ReplaceProjection(ctx context.Context, db bun.IDB, ladder string, players []Player, history []HistoryPoint) error {
	idb := r.resolveDB(db)

	if _, err := idb.NewDelete().Model((*HistoryPoint)(nil)).Where("ladder = ?", ladder).Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	if _, err := idb.NewDelete().Model((*Player)(nil)).Where("ladder = ?", ladder).Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear players: %w", err)
	}

	for start := 0; start < len(players); start += insertBatchSize {
		batch := players[start:min(start+insertBatchSize, len(players))]
		if _, err := idb.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert players: %w", err)
		}
	}
	for start := 0; start < len(history); start += insertBatchSize {
		batch := history[start:min(start+insertBatchSize, len(history))]
		if _, err := idb.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ Repository = (*Impl)(nil)
