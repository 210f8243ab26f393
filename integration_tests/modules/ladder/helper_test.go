package ladderintegrationtests

import (
	"context"
	"testing"

	ladderservice "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/application"
	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/Black-And-White-Club/skill-ladder/integration_tests/testutils"
	"github.com/stretchr/testify/require"
)

const owner = "owner-sub"

// TestDeps holds a ladder service backed by the shared Postgres container.
type TestDeps struct {
	Env     *testutils.TestEnvironment
	Ctx     context.Context
	Service *ladderservice.LadderService
}

func SetupTestLadderService(t *testing.T) TestDeps {
	t.Helper()
	env := testutils.SharedEnvironment(t)

	service := ladderservice.NewLadderService(
		ladderdb.NewRepository(env.DB),
		env.Logger,
		observability.NoopMetrics{},
		env.Tracer,
		env.DB,
		ladderservice.DefaultPolicy(),
	)
	return TestDeps{Env: env, Ctx: env.Ctx, Service: service}
}

func (d TestDeps) createLadder(t *testing.T, name string, shape ladderdomain.Shape) {
	t.Helper()
	_, err := d.Service.CreateLadder(d.Ctx, ladderservice.CreateLadderRequest{
		Name:   name,
		Params: rating.DefaultParams(),
		Shape:  shape,
		Owner:  owner,
	})
	require.NoError(t, err)
}

func (d TestDeps) appendMatch(t *testing.T, ladder string, outcome ladderdomain.Outcome) *ladderdomain.Match {
	t.Helper()
	m, err := d.Service.AppendMatch(d.Ctx, ladderservice.AppendMatchRequest{Ladder: ladder, Outcome: outcome})
	require.NoError(t, err)
	return m
}

func (d TestDeps) scores(t *testing.T, ladder string) map[string]float64 {
	t.Helper()
	standings, err := d.Service.Ranking(d.Ctx, ladder)
	require.NoError(t, err)
	out := make(map[string]float64, len(standings))
	for _, s := range standings {
		out[s.Name] = s.Score
	}
	return out
}
