package ladderservice

import (
	"testing"
	"time"

	ladderdomain "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlayedAt(t *testing.T) {
	now := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "empty is now", input: "", want: now},
		{name: "rfc3339", input: "2026-03-13T18:30:00Z", want: time.Date(2026, 3, 13, 18, 30, 0, 0, time.UTC)},
		{name: "rfc3339 with offset", input: "2026-03-13T18:30:00+02:00", want: time.Date(2026, 3, 13, 16, 30, 0, 0, time.UTC)},
		{name: "yesterday at time", input: "yesterday at 6pm", want: time.Date(2026, 3, 13, 18, 0, 0, 0, time.UTC)},
		{name: "compact clock", input: "today 932am", want: time.Date(2026, 3, 14, 9, 32, 0, 0, time.UTC)},
		{name: "future rfc3339", input: "2026-03-15T00:00:00Z", wantErr: true},
		{name: "gibberish", input: "whenever", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlayedAt(tt.input, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ladderdomain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
