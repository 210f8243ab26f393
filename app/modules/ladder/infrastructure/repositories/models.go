package ladderdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Ladder is the registry row for one ladder.
type Ladder struct {
	bun.BaseModel `bun:"table:ladders,alias:l"`

	Name            string    `bun:"name,pk"`
	Mu              float64   `bun:"mu0,notnull"`
	Sigma           float64   `bun:"sigma0,notnull"`
	Beta            float64   `bun:"beta,notnull"`
	Tau             float64   `bun:"tau,notnull"`
	DrawProbability float64   `bun:"draw_probability,notnull"`
	TeamsCount      int       `bun:"teams_count,notnull"`
	PlayersPerTeam  int       `bun:"players_per_team,notnull"`
	OwnerIdentity   string    `bun:"owner_identity,notnull"`
	NextSequence    int64     `bun:"next_sequence,notnull,default:0"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Match is a ledger entry. RemovedAt marks a tombstone; rows are never deleted.
type Match struct {
	bun.BaseModel `bun:"table:ladder_matches,alias:m"`

	Ladder     string     `bun:"ladder,pk"`
	Sequence   int64      `bun:"sequence,pk"`
	PlayedAt   time.Time  `bun:"played_at,notnull"`
	Outcome    [][]string `bun:"outcome,type:jsonb,notnull"`
	ReportedBy string     `bun:"reported_by,notnull,default:''"`
	RemovedAt  *time.Time `bun:"removed_at"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Player is the derived rating row for one player of a ladder.
type Player struct {
	bun.BaseModel `bun:"table:ladder_players,alias:p"`

	Ladder           string    `bun:"ladder,pk"`
	Name             string    `bun:"name,pk"`
	Mu               float64   `bun:"mu,notnull"`
	Sigma            float64   `bun:"sigma,notnull"`
	LastSeenSequence int64     `bun:"last_seen_sequence,notnull"`
	GamesCount       int       `bun:"games_count,notnull,default:0"`
	WinsCount        int       `bun:"wins_count,notnull,default:0"`
	UpdatedAt        time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// HistoryPoint is a player's belief right after one of their matches.
type HistoryPoint struct {
	bun.BaseModel `bun:"table:ladder_player_history,alias:h"`

	Ladder   string    `bun:"ladder,pk"`
	Player   string    `bun:"player,pk"`
	Sequence int64     `bun:"sequence,pk"`
	PlayedAt time.Time `bun:"played_at,notnull"`
	Mu       float64   `bun:"mu,notnull"`
	Sigma    float64   `bun:"sigma,notnull"`
}

// MatchQuery selects non-removed matches. A zero Limit means no limit.
type MatchQuery struct {
	Limit       int
	Offset      int
	NewestFirst bool
}
