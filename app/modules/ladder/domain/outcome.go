package ladderdomain

import (
	"encoding/json"
	"strings"
)

// MaxPlayerNameLength bounds a player name in bytes.
const MaxPlayerNameLength = 100

// Outcome is a finishing order: teams from best (index 0) to worst, each an
// ordered list of player names.
type Outcome [][]string

// UnmarshalJSON accepts members either as plain strings or as {"name": "..."}
// objects, which older clients send.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw [][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Invalid("outcome", "must be an array of teams")
	}

	out := make(Outcome, len(raw))
	for i, team := range raw {
		out[i] = make([]string, len(team))
		for j, member := range team {
			var name string
			if err := json.Unmarshal(member, &name); err == nil {
				out[i][j] = name
				continue
			}
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(member, &obj); err != nil {
				return Invalid("outcome", "team %d member %d must be a name", i, j)
			}
			out[i][j] = obj.Name
		}
	}
	*o = out
	return nil
}

// Normalize returns a copy with surrounding whitespace trimmed from every name.
func (o Outcome) Normalize() Outcome {
	out := make(Outcome, len(o))
	for i, team := range o {
		out[i] = make([]string, len(team))
		for j, name := range team {
			out[i][j] = strings.TrimSpace(name)
		}
	}
	return out
}

// Validate checks that the outcome ranks at least two non-empty teams of equal
// size, that names are non-empty and trimmed, and that nobody appears twice.
func (o Outcome) Validate() error {
	if len(o) < 2 {
		return Invalid("outcome", "at least two teams are required")
	}

	seen := make(map[string]struct{})
	for i, team := range o {
		if len(team) == 0 {
			return Invalid("outcome", "team %d is empty", i)
		}
		if len(team) != len(o[0]) {
			return Invalid("outcome", "team %d has %d players, expected %d", i, len(team), len(o[0]))
		}
		for _, name := range team {
			if name == "" {
				return Invalid("outcome", "team %d contains an empty name", i)
			}
			if name != strings.TrimSpace(name) {
				return Invalid("outcome", "name %q has surrounding whitespace", name)
			}
			if len(name) > MaxPlayerNameLength {
				return Invalid("outcome", "name %q is longer than %d bytes", name, MaxPlayerNameLength)
			}
			if _, dup := seen[name]; dup {
				return Invalid("outcome", "player %q appears more than once", name)
			}
			seen[name] = struct{}{}
		}
	}
	return nil
}

// Shape returns the number of teams and the largest team size.
func (o Outcome) Shape() Shape {
	s := Shape{TeamsCount: len(o)}
	for _, team := range o {
		if len(team) > s.PlayersPerTeam {
			s.PlayersPerTeam = len(team)
		}
	}
	return s
}

// Players lists every name in finishing order.
func (o Outcome) Players() []string {
	var names []string
	for _, team := range o {
		names = append(names, team...)
	}
	return names
}

// Shape is the team-count/team-size rectangle of a match.
type Shape struct {
	TeamsCount     int `json:"teams_count"`
	PlayersPerTeam int `json:"players_per_team"`
}

// Widen returns the component-wise maximum of s and other.
func (s Shape) Widen(other Shape) Shape {
	return Shape{
		TeamsCount:     max(s.TeamsCount, other.TeamsCount),
		PlayersPerTeam: max(s.PlayersPerTeam, other.PlayersPerTeam),
	}
}
