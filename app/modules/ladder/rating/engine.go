// Package rating implements a Bayesian team skill model. A player's skill is
// a Gaussian belief; a match is a ranked list of teams whose performances are
// the sums of their members' noisy performances. Posteriors come from
// expectation propagation over the resulting factor graph.
package rating

import (
	"errors"
	"fmt"
	"math"
)

// ConservativeK is the number of standard deviations subtracted from the mean
// when ranking players.
const ConservativeK = 3.0

const (
	maxIterations = 10
	minDelta      = 1e-4
)

var (
	// ErrInvalidParams is returned when model parameters are out of range.
	ErrInvalidParams = errors.New("invalid rating parameters")

	// ErrNoTeams is returned when a match carries no teams.
	ErrNoTeams = errors.New("match has no teams")

	// ErrEmptyTeam is returned when a team has no members.
	ErrEmptyTeam = errors.New("match has an empty team")
)

// Rating is a skill belief N(Mu, Sigma²).
type Rating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Conservative returns Mu - k*Sigma.
func (r Rating) Conservative(k float64) float64 {
	return r.Mu - k*r.Sigma
}

// Score is the conservative estimate used for rankings.
func (r Rating) Score() float64 {
	return r.Conservative(ConservativeK)
}

// Params configure the model for one ladder.
type Params struct {
	Mu              float64 `json:"mu"`
	Sigma           float64 `json:"sigma"`
	Beta            float64 `json:"beta"`
	Tau             float64 `json:"tau"`
	DrawProbability float64 `json:"draw_probability"`
}

// DefaultParams returns the customary defaults: mu 25, sigma mu/3, beta sigma/2,
// tau sigma/100 and a 10% draw probability.
func DefaultParams() Params {
	sigma := 25.0 / 3
	return Params{
		Mu:              25,
		Sigma:           sigma,
		Beta:            sigma / 2,
		Tau:             sigma / 100,
		DrawProbability: 0.10,
	}
}

// Prior is the belief assigned to a player without history.
func (p Params) Prior() Rating {
	return Rating{Mu: p.Mu, Sigma: p.Sigma}
}

// Validate checks that every parameter is finite and in range.
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"mu", p.Mu}, {"sigma", p.Sigma}, {"beta", p.Beta}, {"tau", p.Tau}, {"draw_probability", p.DrawProbability},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidParams, f.name)
		}
	}
	switch {
	case p.Sigma <= 0:
		return fmt.Errorf("%w: sigma must be positive", ErrInvalidParams)
	case p.Beta <= 0:
		return fmt.Errorf("%w: beta must be positive", ErrInvalidParams)
	case p.Tau < 0:
		return fmt.Errorf("%w: tau must not be negative", ErrInvalidParams)
	case p.DrawProbability < 0 || p.DrawProbability >= 1:
		return fmt.Errorf("%w: draw_probability must be in [0, 1)", ErrInvalidParams)
	}
	return nil
}

// DrawMargin converts the draw probability into the performance difference
// below which two adjacent teams of the given combined size count as tied.
func (p Params) DrawMargin(players int) float64 {
	return ppf((p.DrawProbability+1)/2) * math.Sqrt(float64(players)) * p.Beta
}

// Rate computes posterior ratings for one match. teams are ordered from best
// (index 0) to worst; team sizes may differ. The result has the same shape as
// the input. Rate is pure: equal inputs always produce bit-identical outputs.
func Rate(params Params, teams [][]Rating) ([][]Rating, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNoTeams
	}
	for _, team := range teams {
		if len(team) == 0 {
			return nil, ErrEmptyTeam
		}
	}

	g := buildGraph(params, teams)
	g.run()

	out := make([][]Rating, len(teams))
	for i, team := range g.skills {
		out[i] = make([]Rating, len(team))
		for j, v := range team {
			out[i][j] = Rating{Mu: v.value.mu(), Sigma: v.value.sigma()}
		}
	}
	return out, nil
}

type graph struct {
	skills      [][]*variable
	priors      [][]Rating
	tau         float64
	likelihoods [][]*likelihoodFactor
	teamPerf    []*sumFactor
	teamDiff    []*sumFactor
	truncations []*truncateFactor
	priorIDs    [][]int
}

func buildGraph(params Params, teams [][]Rating) *graph {
	nextID := 0
	id := func() int {
		nextID++
		return nextID
	}

	g := &graph{
		skills:      make([][]*variable, len(teams)),
		priors:      teams,
		tau:         params.Tau,
		likelihoods: make([][]*likelihoodFactor, len(teams)),
		priorIDs:    make([][]int, len(teams)),
	}
	variance := params.Beta * params.Beta

	teamPerfVars := make([]*variable, len(teams))
	for i, team := range teams {
		perfVars := make([]*variable, len(team))
		coeffs := make([]float64, len(team))
		for j := range team {
			skill := newVariable()
			perf := newVariable()
			g.skills[i] = append(g.skills[i], skill)
			g.priorIDs[i] = append(g.priorIDs[i], id())
			g.likelihoods[i] = append(g.likelihoods[i], &likelihoodFactor{
				id: id(), mean: skill, value: perf, variance: variance,
			})
			perfVars[j] = perf
			coeffs[j] = 1
		}
		teamPerfVars[i] = newVariable()
		g.teamPerf = append(g.teamPerf, &sumFactor{
			id: id(), sum: teamPerfVars[i], terms: perfVars, coeffs: coeffs,
		})
	}

	for i := 0; i+1 < len(teams); i++ {
		diff := newVariable()
		g.teamDiff = append(g.teamDiff, &sumFactor{
			id:     id(),
			sum:    diff,
			terms:  []*variable{teamPerfVars[i], teamPerfVars[i+1]},
			coeffs: []float64{1, -1},
		})
		g.truncations = append(g.truncations, &truncateFactor{
			id:     id(),
			diff:   diff,
			margin: params.DrawMargin(len(teams[i]) + len(teams[i+1])),
		})
	}
	return g
}

func (g *graph) run() {
	// Priors with the dynamics step, then performances and team sums.
	for i, team := range g.priors {
		for j, r := range team {
			sigma := math.Sqrt(r.Sigma*r.Sigma + g.tau*g.tau)
			g.skills[i][j].updateValue(g.priorIDs[i][j], fromMoments(r.Mu, sigma))
		}
	}
	for _, team := range g.likelihoods {
		for _, f := range team {
			f.down()
		}
	}
	for _, f := range g.teamPerf {
		f.down()
	}

	// Ranking constraints. A chain of differences needs iterating until the
	// messages settle; a single difference is exact after one pass.
	n := len(g.teamDiff)
	if n > 0 {
		for iter := 0; iter < maxIterations; iter++ {
			var delta float64
			if n == 1 {
				g.teamDiff[0].down()
				delta = g.truncations[0].up()
			} else {
				for x := 0; x < n-1; x++ {
					g.teamDiff[x].down()
					delta = math.Max(delta, g.truncations[x].up())
					g.teamDiff[x].up(1)
				}
				for x := n - 1; x > 0; x-- {
					g.teamDiff[x].down()
					delta = math.Max(delta, g.truncations[x].up())
					g.teamDiff[x].up(0)
				}
			}
			if delta <= minDelta {
				break
			}
		}
		g.teamDiff[0].up(0)
		g.teamDiff[n-1].up(1)
	}

	// Back down to the players.
	for _, f := range g.teamPerf {
		f.upAll()
	}
	for _, team := range g.likelihoods {
		for _, f := range team {
			f.up()
		}
	}
}
