package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
)

// TestDataGenerator builds reproducible players and match outcomes.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator with an optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	s := time.Now().UnixNano()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed the generator was created with.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// GeneratePlayers returns n distinct first names.
func (g *TestDataGenerator) GeneratePlayers(n int) []string {
	seen := make(map[string]struct{}, n)
	players := make([]string, 0, n)
	for len(players) < n {
		name := g.faker.FirstName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		players = append(players, name)
	}
	return players
}

// GenerateOutcome draws a teams x perTeam match from pool without repeats.
// pool must hold at least teams*perTeam names.
func (g *TestDataGenerator) GenerateOutcome(pool []string, teams, perTeam int) ladderdomain.Outcome {
	shuffled := append([]string(nil), pool...)
	g.faker.ShuffleStrings(shuffled)

	outcome := make(ladderdomain.Outcome, teams)
	for i := range outcome {
		outcome[i] = shuffled[i*perTeam : (i+1)*perTeam]
	}
	return outcome
}
