package ladderservice

import (
	"regexp"
	"strings"
	"time"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	compactClock = regexp.MustCompile(`(\d{1,2})(\d{2})(am|pm)`)
	parser       = newWhenParser()
)

func newWhenParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParsePlayedAt resolves a reported match time. RFC 3339 is tried first, then
// natural language ("yesterday at 6pm") relative to now. An empty input means
// now. The result is in UTC and never after now.
func ParsePlayedAt(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now.UTC(), nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return checkPlayedAt(t.UTC(), now)
	}

	normalized := strings.ToLower(input)
	normalized = strings.ReplaceAll(normalized, "today ", "today at ")
	// "932pm" reads as "9:32 pm"
	normalized = compactClock.ReplaceAllString(normalized, "$1:$2 $3")

	r, err := parser.Parse(normalized, now)
	if err != nil || r == nil {
		return time.Time{}, ladderdomain.Invalid("played_at", "could not recognize %q", input)
	}
	return checkPlayedAt(r.Time.UTC(), now)
}

func checkPlayedAt(t, now time.Time) (time.Time, error) {
	if t.After(now.Add(maxClockSkew)) {
		return time.Time{}, ladderdomain.Invalid("played_at", "must not be in the future")
	}
	return t, nil
}
