package ladderservice

import (
	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
)

func toDomainLadder(l *ladderdb.Ladder) *ladderdomain.Ladder {
	return &ladderdomain.Ladder{
		Name: l.Name,
		Params: rating.Params{
			Mu:              l.Mu,
			Sigma:           l.Sigma,
			Beta:            l.Beta,
			Tau:             l.Tau,
			DrawProbability: l.DrawProbability,
		},
		Shape: ladderdomain.Shape{
			TeamsCount:     l.TeamsCount,
			PlayersPerTeam: l.PlayersPerTeam,
		},
		Owner:     l.OwnerIdentity,
		CreatedAt: l.CreatedAt,
	}
}

func toLadderRow(l *ladderdomain.Ladder) *ladderdb.Ladder {
	return &ladderdb.Ladder{
		Name:            l.Name,
		Mu:              l.Params.Mu,
		Sigma:           l.Params.Sigma,
		Beta:            l.Params.Beta,
		Tau:             l.Params.Tau,
		DrawProbability: l.Params.DrawProbability,
		TeamsCount:      l.Shape.TeamsCount,
		PlayersPerTeam:  l.Shape.PlayersPerTeam,
		OwnerIdentity:   l.Owner,
		CreatedAt:       l.CreatedAt,
	}
}

func toDomainMatch(m ladderdb.Match) ladderdomain.Match {
	return ladderdomain.Match{
		Sequence:   m.Sequence,
		PlayedAt:   m.PlayedAt,
		Outcome:    ladderdomain.Outcome(m.Outcome),
		ReportedBy: m.ReportedBy,
		Removed:    m.RemovedAt != nil,
	}
}

func toDomainMatches(rows []ladderdb.Match) []ladderdomain.Match {
	out := make([]ladderdomain.Match, len(rows))
	for i, m := range rows {
		out[i] = toDomainMatch(m)
	}
	return out
}

func toPlayerState(p ladderdb.Player) PlayerState {
	return PlayerState{
		Name:     p.Name,
		Rating:   rating.Rating{Mu: p.Mu, Sigma: p.Sigma},
		LastSeen: p.LastSeenSequence,
		Games:    p.GamesCount,
		Wins:     p.WinsCount,
	}
}

func toPlayerStates(rows []ladderdb.Player) []PlayerState {
	out := make([]PlayerState, len(rows))
	for i, p := range rows {
		out[i] = toPlayerState(p)
	}
	return out
}

func toPlayerRows(ladder string, states []PlayerState) []ladderdb.Player {
	out := make([]ladderdb.Player, len(states))
	for i, st := range states {
		out[i] = ladderdb.Player{
			Ladder:           ladder,
			Name:             st.Name,
			Mu:               st.Rating.Mu,
			Sigma:            st.Rating.Sigma,
			LastSeenSequence: st.LastSeen,
			GamesCount:       st.Games,
			WinsCount:        st.Wins,
		}
	}
	return out
}

func toHistoryRows(ladder string, records []HistoryRecord) []ladderdb.HistoryPoint {
	out := make([]ladderdb.HistoryPoint, len(records))
	for i, r := range records {
		out[i] = ladderdb.HistoryPoint{
			Ladder:   ladder,
			Player:   r.Player,
			Sequence: r.Entry.Sequence,
			PlayedAt: r.Entry.PlayedAt,
			Mu:       r.Entry.Mu,
			Sigma:    r.Entry.Sigma,
		}
	}
	return out
}

func toHistoryEntries(rows []ladderdb.HistoryPoint) []ladderdomain.HistoryEntry {
	out := make([]ladderdomain.HistoryEntry, len(rows))
	for i, h := range rows {
		out[i] = ladderdomain.HistoryEntry{
			Sequence: h.Sequence,
			PlayedAt: h.PlayedAt,
			Mu:       h.Mu,
			Sigma:    h.Sigma,
		}
	}
	return out
}
