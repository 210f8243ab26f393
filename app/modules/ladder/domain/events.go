package ladderdomain

import (
	"time"

	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
)

// Event topics published after a mutation commits.
const (
	LadderCreatedTopic         = "ladder.created"
	LadderSettingsUpdatedTopic = "ladder.settings.updated"
	MatchRecordedTopic         = "ladder.match.recorded"
	MatchRemovedTopic          = "ladder.match.removed"
	LadderReprojectedTopic     = "ladder.reprojected"
)

// LadderCreatedPayload announces a new ladder.
type LadderCreatedPayload struct {
	Ladder    string    `json:"ladder"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// LadderSettingsUpdatedPayload announces new rating parameters. Ratings are
// reprojected under them.
type LadderSettingsUpdatedPayload struct {
	Ladder    string        `json:"ladder"`
	Params    rating.Params `json:"params"`
	UpdatedBy string        `json:"updated_by"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// MatchRecordedPayload announces an appended match and the resulting ratings
// of its players.
type MatchRecordedPayload struct {
	Ladder   string     `json:"ladder"`
	Sequence int64      `json:"sequence"`
	PlayedAt time.Time  `json:"played_at"`
	Outcome  Outcome    `json:"outcome"`
	Players  []Standing `json:"players"`
}

// MatchRemovedPayload announces a tombstoned match.
type MatchRemovedPayload struct {
	Ladder    string    `json:"ladder"`
	Sequence  int64     `json:"sequence"`
	RemovedBy string    `json:"removed_by"`
	RemovedAt time.Time `json:"removed_at"`
}

// LadderReprojectedPayload announces a committed full reprojection.
type LadderReprojectedPayload struct {
	Ladder  string `json:"ladder"`
	Matches int    `json:"matches"`
	Players int    `json:"players"`
}
