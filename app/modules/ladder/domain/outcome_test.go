package ladderdomain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Outcome
		wantErr bool
	}{
		{
			name:  "plain names",
			input: `[["a","b"],["c","d"]]`,
			want:  Outcome{{"a", "b"}, {"c", "d"}},
		},
		{
			name:  "member objects",
			input: `[[{"name":"a"}],[{"name":"b"}]]`,
			want:  Outcome{{"a"}, {"b"}},
		},
		{
			name:  "mixed",
			input: `[["a",{"name":"b"}],["c","d"]]`,
			want:  Outcome{{"a", "b"}, {"c", "d"}},
		},
		{
			name:    "not an array",
			input:   `{"a":1}`,
			wantErr: true,
		},
		{
			name:    "numeric member",
			input:   `[[1],[2]]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Outcome
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput), "expected invalid input, got %v", err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("outcome mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOutcome_Validate(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		wantErr string
	}{
		{name: "head to head", outcome: Outcome{{"x"}, {"y"}}},
		{name: "three by three", outcome: Outcome{{"a", "b", "c"}, {"d", "e", "f"}, {"g", "h", "i"}}},
		{name: "single team", outcome: Outcome{{"a", "b"}}, wantErr: "at least two teams"},
		{name: "empty team", outcome: Outcome{{"a"}, {}}, wantErr: "team 1 is empty"},
		{name: "empty name", outcome: Outcome{{"a"}, {""}}, wantErr: "empty name"},
		{name: "untrimmed", outcome: Outcome{{"a "}, {"b"}}, wantErr: "whitespace"},
		{name: "ragged", outcome: Outcome{{"a", "b"}, {"c"}}, wantErr: "expected 2"},
		{name: "repeat in team", outcome: Outcome{{"a", "a"}, {"b", "c"}}, wantErr: "more than once"},
		{name: "repeat across teams", outcome: Outcome{{"a"}, {"a"}}, wantErr: "more than once"},
		{name: "long name", outcome: Outcome{{strings.Repeat("n", MaxPlayerNameLength+1)}, {"b"}}, wantErr: "longer than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.outcome.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOutcome_NormalizeThenValidate(t *testing.T) {
	o := Outcome{{"  alice "}, {"bob\t"}}.Normalize()

	assert.Equal(t, Outcome{{"alice"}, {"bob"}}, o)
	assert.NoError(t, o.Validate())
}

func TestOutcome_Shape(t *testing.T) {
	assert.Equal(t, Shape{TeamsCount: 2, PlayersPerTeam: 1}, Outcome{{"a"}, {"b"}}.Shape())
	assert.Equal(t, Shape{TeamsCount: 3, PlayersPerTeam: 3}, Outcome{{"a", "b", "c"}, {"d", "e", "f"}, {"g", "h", "i"}}.Shape())
}

func TestShape_WidenNeverShrinks(t *testing.T) {
	s := Shape{TeamsCount: 2, PlayersPerTeam: 1}

	s = s.Widen(Shape{TeamsCount: 3, PlayersPerTeam: 3})
	assert.Equal(t, Shape{TeamsCount: 3, PlayersPerTeam: 3}, s)

	s = s.Widen(Shape{TeamsCount: 2, PlayersPerTeam: 1})
	assert.Equal(t, Shape{TeamsCount: 3, PlayersPerTeam: 3}, s)
}

func TestValidateLadderName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "foo"},
		{name: "spaces inside", input: "office foosball"},
		{name: "empty", input: "", wantErr: true},
		{name: "slash", input: "a/b", wantErr: true},
		{name: "untrimmed", input: " foo", wantErr: true},
		{name: "reserved", input: "user", wantErr: true},
		{name: "reserved any case", input: "User", wantErr: true},
		{name: "control", input: "a\nb", wantErr: true},
		{name: "too long", input: strings.Repeat("x", MaxLadderNameLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLadderName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrLadderNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrMatchNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrLadderExists, ErrAlreadyExists)
	assert.ErrorIs(t, ErrNotOwner, ErrForbidden)
	assert.ErrorIs(t, ErrUnauthenticated, ErrForbidden)
	assert.True(t, IsDomainError(Invalid("x", "bad")))
	assert.False(t, IsDomainError(errors.New("connection reset")))
}
