package ladderservice

import (
	"cmp"
	"fmt"
	"slices"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
)

// PlayerState is one row of the in-memory Player Table.
type PlayerState struct {
	Name     string
	Rating   rating.Rating
	LastSeen int64
	Games    int
	Wins     int
}

// HistoryRecord is a history entry tagged with its player.
type HistoryRecord struct {
	Player string
	Entry  ladderdomain.HistoryEntry
}

// Projection is a Player Table built by folding matches in sequence order.
// Both the incremental append path and full reprojection go through Apply,
// so they produce identical beliefs for the same ledger.
type Projection struct {
	params  rating.Params
	players map[string]*PlayerState
	history []HistoryRecord
	matches int
}

// NewProjection starts a projection from previously stored player states.
func NewProjection(params rating.Params, seed []PlayerState) *Projection {
	p := &Projection{
		params:  params,
		players: make(map[string]*PlayerState, len(seed)),
	}
	for _, st := range seed {
		p.players[st.Name] = &st
	}
	return p
}

// Apply folds one match into the table and returns the updated states of its
// players in outcome order, together with the history points it recorded.
func (p *Projection) Apply(m ladderdomain.Match) ([]PlayerState, []HistoryRecord, error) {
	teams := make([][]rating.Rating, len(m.Outcome))
	for i, team := range m.Outcome {
		teams[i] = make([]rating.Rating, len(team))
		for j, name := range team {
			if st, ok := p.players[name]; ok {
				teams[i][j] = st.Rating
			} else {
				teams[i][j] = p.params.Prior()
			}
		}
	}

	posteriors, err := rating.Rate(p.params, teams)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to rate match %d: %w", m.Sequence, err)
	}

	updated := make([]PlayerState, 0, len(teams)*len(teams[0]))
	records := make([]HistoryRecord, 0, cap(updated))
	for i, team := range m.Outcome {
		for j, name := range team {
			st, ok := p.players[name]
			if !ok {
				st = &PlayerState{Name: name}
				p.players[name] = st
			}
			st.Rating = posteriors[i][j]
			st.LastSeen = m.Sequence
			st.Games++
			if i == 0 {
				st.Wins++
			}
			updated = append(updated, *st)
			records = append(records, HistoryRecord{
				Player: name,
				Entry: ladderdomain.HistoryEntry{
					Sequence: m.Sequence,
					PlayedAt: m.PlayedAt,
					Mu:       st.Rating.Mu,
					Sigma:    st.Rating.Sigma,
				},
			})
		}
	}

	p.history = append(p.history, records...)
	p.matches++
	return updated, records, nil
}

// Players returns every player state ordered by name.
func (p *Projection) Players() []PlayerState {
	out := make([]PlayerState, 0, len(p.players))
	for _, st := range p.players {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b PlayerState) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// Player returns one player's state.
func (p *Projection) Player(name string) (PlayerState, bool) {
	st, ok := p.players[name]
	if !ok {
		return PlayerState{}, false
	}
	return *st, true
}

// History returns the history recorded by Apply calls on this projection.
func (p *Projection) History() []HistoryRecord {
	return p.history
}

// Matches is the number of matches folded.
func (p *Projection) Matches() int {
	return p.matches
}

// Replay folds the non-removed matches in ascending sequence order, starting
// from an empty Player Table.
func Replay(params rating.Params, matches []ladderdomain.Match) (*Projection, error) {
	ordered := slices.Clone(matches)
	slices.SortFunc(ordered, func(a, b ladderdomain.Match) int { return cmp.Compare(a.Sequence, b.Sequence) })

	p := NewProjection(params, nil)
	for _, m := range ordered {
		if m.Removed {
			continue
		}
		if _, _, err := p.Apply(m); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Standings ranks players by conservative score, highest first, ties broken by name.
func Standings(players []PlayerState) []ladderdomain.Standing {
	out := make([]ladderdomain.Standing, len(players))
	for i, st := range players {
		out[i] = ladderdomain.Standing{
			Name:             st.Name,
			Mu:               st.Rating.Mu,
			Sigma:            st.Rating.Sigma,
			Score:            st.Rating.Score(),
			GamesCount:       st.Games,
			WinsCount:        st.Wins,
			LastSeenSequence: st.LastSeen,
		}
	}
	slices.SortFunc(out, func(a, b ladderdomain.Standing) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
