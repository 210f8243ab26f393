package ladderhandlers

import (
	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
)

type tokenRequest struct {
	IDToken string `json:"idtoken"`
}

type gameRequest struct {
	Outcome  ladderdomain.Outcome `json:"outcome"`
	PlayedAt string               `json:"played_at"`
	IDToken  string               `json:"idtoken"`
}

type removeRequest struct {
	ID      int64  `json:"id"`
	IDToken string `json:"idtoken"`
}

// createRequest leaves every parameter optional; omitted ones take the
// configured defaults.
type createRequest struct {
	Name            string   `json:"name"`
	Mu              *float64 `json:"mu"`
	Sigma           *float64 `json:"sigma"`
	Beta            *float64 `json:"beta"`
	Tau             *float64 `json:"tau"`
	DrawProbability *float64 `json:"draw_probability"`
	TeamsCount      *int     `json:"teams_count"`
	PlayersPerTeam  *int     `json:"players_per_team"`
	IDToken         string   `json:"idtoken"`
}

func (c createRequest) params(defaults CreateDefaults) (rating.Params, ladderdomain.Shape) {
	p, s := defaults.Params, defaults.Shape
	setFloat(&p.Mu, c.Mu)
	setFloat(&p.Sigma, c.Sigma)
	setFloat(&p.Beta, c.Beta)
	setFloat(&p.Tau, c.Tau)
	setFloat(&p.DrawProbability, c.DrawProbability)
	if c.TeamsCount != nil {
		s.TeamsCount = *c.TeamsCount
	}
	if c.PlayersPerTeam != nil {
		s.PlayersPerTeam = *c.PlayersPerTeam
	}
	return p, s
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// settingsRequest overrides the ladder's current rating parameters; omitted
// ones keep their stored value.
type settingsRequest struct {
	Name            string   `json:"name"`
	Mu              *float64 `json:"mu"`
	Sigma           *float64 `json:"sigma"`
	Beta            *float64 `json:"beta"`
	Tau             *float64 `json:"tau"`
	DrawProbability *float64 `json:"draw_probability"`
	IDToken         string   `json:"idtoken"`
}

func (c settingsRequest) params(current rating.Params) rating.Params {
	setFloat(&current.Mu, c.Mu)
	setFloat(&current.Sigma, c.Sigma)
	setFloat(&current.Beta, c.Beta)
	setFloat(&current.Tau, c.Tau)
	setFloat(&current.DrawProbability, c.DrawProbability)
	return current
}

type matchShapeResponse struct {
	Exists bool `json:"exists"`
	ladderdomain.Shape
}

type settingsResponse struct {
	Exists    bool   `json:"exists"`
	Name      string `json:"name,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	rating.Params
	ladderdomain.Shape
}

func newSettingsResponse(l *ladderdomain.Ladder) settingsResponse {
	return settingsResponse{
		Exists:    true,
		Name:      l.Name,
		CreatedAt: l.CreatedAt.Unix(),
		Params:    l.Params,
		Shape:     l.Shape,
	}
}

type rankingResponse struct {
	Exists  bool                    `json:"exists"`
	Ranking []ladderdomain.Standing `json:"ranking"`
}

// matchView is a match as the UI sees it: unix seconds, no reporter.
type matchView struct {
	ID        int64                `json:"id"`
	Timestamp int64                `json:"timestamp"`
	Outcome   ladderdomain.Outcome `json:"outcome"`
}

func newMatchView(m ladderdomain.Match) matchView {
	return matchView{ID: m.Sequence, Timestamp: m.PlayedAt.Unix(), Outcome: m.Outcome}
}

type matchesResponse struct {
	Exists  bool        `json:"exists"`
	Owned   bool        `json:"owned"`
	Matches []matchView `json:"matches"`
}

type suggestResponse struct {
	Exists bool     `json:"exists"`
	Names  []string `json:"names"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
