package ladderhandlers

import (
	"context"
	"strings"
	"time"

	authservice "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/auth/domain"
	ladderservice "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/application"
	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
)

// FakeService is a programmable ladderservice.Service. Unset funcs return zero values.
type FakeService struct {
	CreateLadderFunc    func(ctx context.Context, req ladderservice.CreateLadderRequest) (*ladderdomain.Ladder, error)
	GetLadderFunc       func(ctx context.Context, name string) (*ladderdomain.Ladder, error)
	LadderExistsFunc    func(ctx context.Context, name string) (bool, error)
	MatchShapeFunc      func(ctx context.Context, name string) (ladderdomain.Shape, error)
	IsOwnerFunc         func(ctx context.Context, name, identity string) (bool, error)
	UpdateSettingsFunc  func(ctx context.Context, req ladderservice.UpdateSettingsRequest) (*ladderdomain.Ladder, error)
	OwnedByFunc         func(ctx context.Context, identity string) ([]string, error)
	AppendMatchFunc     func(ctx context.Context, req ladderservice.AppendMatchRequest) (*ladderdomain.Match, error)
	RemoveMatchFunc     func(ctx context.Context, name string, sequence int64, identity string) error
	ListMatchesFunc     func(ctx context.Context, name string, q ladderdomain.MatchQuery) ([]ladderdomain.Match, error)
	RankingFunc         func(ctx context.Context, name string) ([]ladderdomain.Standing, error)
	HistoryFunc         func(ctx context.Context, name, player string) ([]ladderdomain.HistoryEntry, error)
	SuggestFunc         func(ctx context.Context, name, prefix string) ([]string, error)
	ReprojectFunc       func(ctx context.Context, name, identity string) (ladderservice.ReprojectionResult, error)
	ReprojectLadderFunc func(ctx context.Context, name string) (ladderservice.ReprojectionResult, error)
	HistoryChartFunc    func(ctx context.Context, name, player string) ([]byte, error)
	ExportWorkbookFunc  func(ctx context.Context, name string) ([]byte, error)

	trace []string
}

var _ ladderservice.Service = (*FakeService)(nil)

func (f *FakeService) record(step string) { f.trace = append(f.trace, step) }

// Trace returns the service calls made, in order.
func (f *FakeService) Trace() []string { return f.trace }

func (f *FakeService) CreateLadder(ctx context.Context, req ladderservice.CreateLadderRequest) (*ladderdomain.Ladder, error) {
	f.record("CreateLadder")
	if f.CreateLadderFunc != nil {
		return f.CreateLadderFunc(ctx, req)
	}
	return &ladderdomain.Ladder{Name: req.Name, Params: req.Params, Shape: req.Shape, Owner: req.Owner}, nil
}

func (f *FakeService) GetLadder(ctx context.Context, name string) (*ladderdomain.Ladder, error) {
	f.record("GetLadder")
	if f.GetLadderFunc != nil {
		return f.GetLadderFunc(ctx, name)
	}
	return nil, ladderdomain.ErrLadderNotFound
}

func (f *FakeService) LadderExists(ctx context.Context, name string) (bool, error) {
	f.record("LadderExists")
	if f.LadderExistsFunc != nil {
		return f.LadderExistsFunc(ctx, name)
	}
	return false, nil
}

func (f *FakeService) MatchShape(ctx context.Context, name string) (ladderdomain.Shape, error) {
	f.record("MatchShape")
	if f.MatchShapeFunc != nil {
		return f.MatchShapeFunc(ctx, name)
	}
	return ladderdomain.Shape{}, ladderdomain.ErrLadderNotFound
}

func (f *FakeService) IsOwner(ctx context.Context, name, identity string) (bool, error) {
	f.record("IsOwner")
	if f.IsOwnerFunc != nil {
		return f.IsOwnerFunc(ctx, name, identity)
	}
	return false, nil
}

func (f *FakeService) UpdateSettings(ctx context.Context, req ladderservice.UpdateSettingsRequest) (*ladderdomain.Ladder, error) {
	f.record("UpdateSettings")
	if f.UpdateSettingsFunc != nil {
		return f.UpdateSettingsFunc(ctx, req)
	}
	return &ladderdomain.Ladder{Name: req.Name, Params: req.Params, Owner: req.Identity}, nil
}

func (f *FakeService) OwnedBy(ctx context.Context, identity string) ([]string, error) {
	f.record("OwnedBy")
	if f.OwnedByFunc != nil {
		return f.OwnedByFunc(ctx, identity)
	}
	return []string{}, nil
}

func (f *FakeService) AppendMatch(ctx context.Context, req ladderservice.AppendMatchRequest) (*ladderdomain.Match, error) {
	f.record("AppendMatch")
	if f.AppendMatchFunc != nil {
		return f.AppendMatchFunc(ctx, req)
	}
	return &ladderdomain.Match{Sequence: 1, PlayedAt: req.PlayedAt, Outcome: req.Outcome}, nil
}

func (f *FakeService) RemoveMatch(ctx context.Context, name string, sequence int64, identity string) error {
	f.record("RemoveMatch")
	if f.RemoveMatchFunc != nil {
		return f.RemoveMatchFunc(ctx, name, sequence, identity)
	}
	return nil
}

func (f *FakeService) ListMatches(ctx context.Context, name string, q ladderdomain.MatchQuery) ([]ladderdomain.Match, error) {
	f.record("ListMatches")
	if f.ListMatchesFunc != nil {
		return f.ListMatchesFunc(ctx, name, q)
	}
	return nil, nil
}

func (f *FakeService) Ranking(ctx context.Context, name string) ([]ladderdomain.Standing, error) {
	f.record("Ranking")
	if f.RankingFunc != nil {
		return f.RankingFunc(ctx, name)
	}
	return []ladderdomain.Standing{}, nil
}

func (f *FakeService) History(ctx context.Context, name, player string) ([]ladderdomain.HistoryEntry, error) {
	f.record("History")
	if f.HistoryFunc != nil {
		return f.HistoryFunc(ctx, name, player)
	}
	return []ladderdomain.HistoryEntry{}, nil
}

func (f *FakeService) Suggest(ctx context.Context, name, prefix string) ([]string, error) {
	f.record("Suggest")
	if f.SuggestFunc != nil {
		return f.SuggestFunc(ctx, name, prefix)
	}
	return []string{}, nil
}

func (f *FakeService) Reproject(ctx context.Context, name, identity string) (ladderservice.ReprojectionResult, error) {
	f.record("Reproject")
	if f.ReprojectFunc != nil {
		return f.ReprojectFunc(ctx, name, identity)
	}
	return ladderservice.ReprojectionResult{}, nil
}

func (f *FakeService) ReprojectLadder(ctx context.Context, name string) (ladderservice.ReprojectionResult, error) {
	f.record("ReprojectLadder")
	if f.ReprojectLadderFunc != nil {
		return f.ReprojectLadderFunc(ctx, name)
	}
	return ladderservice.ReprojectionResult{}, nil
}

func (f *FakeService) HistoryChart(ctx context.Context, name, player string) ([]byte, error) {
	f.record("HistoryChart")
	if f.HistoryChartFunc != nil {
		return f.HistoryChartFunc(ctx, name, player)
	}
	return []byte("\x89PNG"), nil
}

func (f *FakeService) ExportWorkbook(ctx context.Context, name string) ([]byte, error) {
	f.record("ExportWorkbook")
	if f.ExportWorkbookFunc != nil {
		return f.ExportWorkbookFunc(ctx, name)
	}
	return []byte("PK"), nil
}

// FakeAuth accepts tokens of the form "token-<subject>".
type FakeAuth struct{}

func (FakeAuth) Authenticate(_ context.Context, token string) (*authdomain.Identity, error) {
	if token == "" {
		return nil, authservice.ErrMissingToken
	}
	subject, ok := strings.CutPrefix(token, "token-")
	if !ok || subject == "" {
		return nil, authservice.ErrInvalidToken
	}
	return &authdomain.Identity{Subject: subject}, nil
}

func (FakeAuth) IssueToken(context.Context, string, time.Duration) (string, error) {
	return "", authservice.ErrIssuingUnsupported
}
