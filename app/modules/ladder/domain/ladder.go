// Package ladderdomain holds the ladder module's value types and validation.
package ladderdomain

import (
	"strings"
	"time"
	"unicode"

	"github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/rating"
)

const (
	// MaxLadderNameLength bounds a ladder name in bytes.
	MaxLadderNameLength = 100

	// SuggestionLimit caps the number of names returned by a suggestion query.
	SuggestionLimit = 10
)

// reservedNames collide with top-level API routes.
var reservedNames = map[string]struct{}{
	"user":    {},
	"healthz": {},
	"metrics": {},
}

// Ladder is an independently configured pool of players and matches.
type Ladder struct {
	Name      string        `json:"name"`
	Params    rating.Params `json:"params"`
	Shape     Shape         `json:"shape"`
	Owner     string        `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// ValidateLadderName rejects names that cannot be used as a path segment or
// that collide with reserved routes.
func ValidateLadderName(name string) error {
	switch {
	case name == "":
		return Invalid("name", "must not be empty")
	case name != strings.TrimSpace(name):
		return Invalid("name", "must not have surrounding whitespace")
	case len(name) > MaxLadderNameLength:
		return Invalid("name", "must be at most %d bytes", MaxLadderNameLength)
	case strings.ContainsAny(name, "/?#%"):
		return Invalid("name", "must not contain '/', '?', '#' or '%%'")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return Invalid("name", "must not contain control characters")
		}
	}
	if _, ok := reservedNames[strings.ToLower(name)]; ok {
		return Invalid("name", "%q is reserved", name)
	}
	return nil
}

// Match is one ledger entry.
type Match struct {
	Sequence   int64     `json:"id"`
	PlayedAt   time.Time `json:"timestamp"`
	Outcome    Outcome   `json:"outcome"`
	ReportedBy string    `json:"-"`
	Removed    bool      `json:"-"`
}

// MatchQuery selects a page of non-removed matches.
type MatchQuery struct {
	Limit       int
	Offset      int
	NewestFirst bool
}

// Standing is one row of a ranking.
type Standing struct {
	Rank             int     `json:"rank"`
	Name             string  `json:"name"`
	Mu               float64 `json:"mu"`
	Sigma            float64 `json:"sigma"`
	Score            float64 `json:"score"`
	GamesCount       int     `json:"games_count"`
	WinsCount        int     `json:"wins_count"`
	LastSeenSequence int64   `json:"last_seen"`
}

// HistoryEntry is a player's belief right after one of their matches.
type HistoryEntry struct {
	Sequence int64     `json:"sequence"`
	PlayedAt time.Time `json:"timestamp"`
	Mu       float64   `json:"mu"`
	Sigma    float64   `json:"sigma"`
}

// Skill is the conservative estimate recorded for the entry.
func (h HistoryEntry) Skill() float64 {
	return rating.Rating{Mu: h.Mu, Sigma: h.Sigma}.Score()
}
