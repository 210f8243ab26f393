package ladderdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for ladder persistence.
// All methods accept an optional bun.IDB so callers can run them inside a
// transaction; nil falls back to the repository's connection.
//
// Error semantics:
//   - ErrNotFound: record does not exist (or a match is already removed)
//   - ErrDuplicate: ladder name already taken
//   - Other errors: infrastructure failures
type Repository interface {
	// CreateLadder inserts a new ladder. Returns ErrDuplicate if the name is taken.
	CreateLadder(ctx context.Context, db bun.IDB, ladder *Ladder) error

	// GetLadder retrieves a ladder by name.
	GetLadder(ctx context.Context, db bun.IDB, name string) (*Ladder, error)

	// LockLadder retrieves a ladder and holds a row lock until the surrounding
	// transaction ends.
	LockLadder(ctx context.Context, db bun.IDB, name string) (*Ladder, error)

	// UpdateLadderState stores the sequence cursor and the widest match shape.
	UpdateLadderState(ctx context.Context, db bun.IDB, name string, nextSequence int64, teamsCount, playersPerTeam int) error

	// UpdateLadderParams stores the rating parameters carried by ladder.
	UpdateLadderParams(ctx context.Context, db bun.IDB, ladder *Ladder) error

	// ListLaddersByOwner returns the names of ladders owned by an identity.
	ListLaddersByOwner(ctx context.Context, db bun.IDB, owner string) ([]string, error)

	// InsertMatch appends a match to the ledger.
	InsertMatch(ctx context.Context, db bun.IDB, match *Match) error

	// GetMatch retrieves one match, removed or not.
	GetMatch(ctx context.Context, db bun.IDB, ladder string, sequence int64) (*Match, error)

	// MarkMatchRemoved tombstones a match. Returns ErrNotFound if it does not
	// exist or is already removed.
	MarkMatchRemoved(ctx context.Context, db bun.IDB, ladder string, sequence int64, at time.Time) error

	// ListMatches returns non-removed matches ordered by sequence.
	ListMatches(ctx context.Context, db bun.IDB, ladder string, q MatchQuery) ([]Match, error)

	// GetPlayers returns the rows for the named players that exist.
	GetPlayers(ctx context.Context, db bun.IDB, ladder string, names []string) ([]Player, error)

	// ListPlayers returns every player row of a ladder.
	ListPlayers(ctx context.Context, db bun.IDB, ladder string) ([]Player, error)

	// SearchPlayers returns players whose name starts with prefix, ignoring case,
	// most recently seen first.
	SearchPlayers(ctx context.Context, db bun.IDB, ladder, prefix string, limit int) ([]Player, error)

	// UpsertPlayers writes player rows.
	UpsertPlayers(ctx context.Context, db bun.IDB, players []Player) error

	// InsertHistory appends history points.
	InsertHistory(ctx context.Context, db bun.IDB, points []HistoryPoint) error

	// GetHistory returns one player's history, oldest first.
	GetHistory(ctx context.Context, db bun.IDB, ladder, player string) ([]HistoryPoint, error)

	// ReplaceProjection swaps every derived row of a ladder for the given ones.
	ReplaceProjection(ctx context.Context, db bun.IDB, ladder string, players []Player, history []HistoryPoint) error
}
