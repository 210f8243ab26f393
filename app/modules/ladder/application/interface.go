package ladderservice

import (
	"context"
	"time"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
)

// Service is the ladder module's application interface.
//
// Errors wrap the ladderdomain taxonomy (ErrNotFound, ErrAlreadyExists,
// ErrForbidden, ErrInvalidInput, ErrConflict); anything else is an
// infrastructure failure.
type Service interface {
	// Registry
	CreateLadder(ctx context.Context, req CreateLadderRequest) (*ladderdomain.Ladder, error)
	GetLadder(ctx context.Context, name string) (*ladderdomain.Ladder, error)
	LadderExists(ctx context.Context, name string) (bool, error)
	MatchShape(ctx context.Context, name string) (ladderdomain.Shape, error)
	IsOwner(ctx context.Context, name, identity string) (bool, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*ladderdomain.Ladder, error)
	OwnedBy(ctx context.Context, identity string) ([]string, error)

	// Ledger
	AppendMatch(ctx context.Context, req AppendMatchRequest) (*ladderdomain.Match, error)
	RemoveMatch(ctx context.Context, name string, sequence int64, identity string) error
	ListMatches(ctx context.Context, name string, q ladderdomain.MatchQuery) ([]ladderdomain.Match, error)

	// Projection
	Ranking(ctx context.Context, name string) ([]ladderdomain.Standing, error)
	History(ctx context.Context, name, player string) ([]ladderdomain.HistoryEntry, error)
	Suggest(ctx context.Context, name, prefix string) ([]string, error)
	Reproject(ctx context.Context, name, identity string) (ReprojectionResult, error)
	ReprojectLadder(ctx context.Context, name string) (ReprojectionResult, error)

	// Reports
	HistoryChart(ctx context.Context, name, player string) ([]byte, error)
	ExportWorkbook(ctx context.Context, name string) ([]byte, error)
}

// CreateLadderRequest describes a new ladder. Owner is the verified identity
// of the caller.
type CreateLadderRequest struct {
	Name   string
	Params rating.Params
	Shape  ladderdomain.Shape
	Owner  string
}

// UpdateSettingsRequest replaces a ladder's rating parameters. Identity must
// be the ladder owner.
type UpdateSettingsRequest struct {
	Name     string
	Params   rating.Params
	Identity string
}

// AppendMatchRequest reports one match. A zero PlayedAt means now.
type AppendMatchRequest struct {
	Ladder   string
	Outcome  ladderdomain.Outcome
	PlayedAt time.Time
	Reporter string
}

// ReprojectionResult summarises a reprojection. Queued is set when the work
// was handed to the background queue instead of running inline.
type ReprojectionResult struct {
	Matches int  `json:"matches"`
	Players int  `json:"players"`
	Queued  bool `json:"queued"`
}

// EventPublisher delivers domain events after a mutation commits.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// ReprojectionScheduler queues a full reprojection of a ladder.
type ReprojectionScheduler interface {
	ScheduleReprojection(ctx context.Context, ladder string) error
}
