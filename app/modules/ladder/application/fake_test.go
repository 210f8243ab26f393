package ladderservice

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	ladderdb "github.com/Black-And-White-Club/skill-ladder/app/modules/ladder/infrastructure/repositories"
	"github.com/Black-And-White-Club/skill-ladder/app/observability"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Ladder Repo
// ------------------------

// FakeLadderRepo keeps ladders, matches and the projection in maps so the
// service can be exercised end to end. Func fields override single methods.
type FakeLadderRepo struct {
	mu    sync.Mutex
	trace []string

	ladders map[string]ladderdb.Ladder
	matches map[string][]ladderdb.Match
	players map[string]map[string]ladderdb.Player
	history map[string][]ladderdb.HistoryPoint

	CreateLadderFunc       func(ctx context.Context, db bun.IDB, ladder *ladderdb.Ladder) error
	GetLadderFunc          func(ctx context.Context, db bun.IDB, name string) (*ladderdb.Ladder, error)
	LockLadderFunc         func(ctx context.Context, db bun.IDB, name string) (*ladderdb.Ladder, error)
	ListLaddersByOwnerFunc func(ctx context.Context, db bun.IDB, owner string) ([]string, error)
	InsertMatchFunc        func(ctx context.Context, db bun.IDB, match *ladderdb.Match) error
	ListMatchesFunc        func(ctx context.Context, db bun.IDB, ladder string, q ladderdb.MatchQuery) ([]ladderdb.Match, error)
	ListPlayersFunc        func(ctx context.Context, db bun.IDB, ladder string) ([]ladderdb.Player, error)
	ReplaceProjectionFunc  func(ctx context.Context, db bun.IDB, ladder string, players []ladderdb.Player, history []ladderdb.HistoryPoint) error
}

func NewFakeLadderRepo() *FakeLadderRepo {
	return &FakeLadderRepo{
		trace:   []string{},
		ladders: map[string]ladderdb.Ladder{},
		matches: map[string][]ladderdb.Match{},
		players: map[string]map[string]ladderdb.Player{},
		history: map[string][]ladderdb.HistoryPoint{},
	}
}

func (f *FakeLadderRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeLadderRepo) CreateLadder(ctx context.Context, db bun.IDB, ladder *ladderdb.Ladder) error {
	f.record("CreateLadder")
	if f.CreateLadderFunc != nil {
		return f.CreateLadderFunc(ctx, db, ladder)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ladders[ladder.Name]; ok {
		return ladderdb.ErrDuplicate
	}
	f.ladders[ladder.Name] = *ladder
	return nil
}

func (f *FakeLadderRepo) GetLadder(ctx context.Context, db bun.IDB, name string) (*ladderdb.Ladder, error) {
	f.record("GetLadder")
	if f.GetLadderFunc != nil {
		return f.GetLadderFunc(ctx, db, name)
	}
	return f.getLadder(name)
}

func (f *FakeLadderRepo) LockLadder(ctx context.Context, db bun.IDB, name string) (*ladderdb.Ladder, error) {
	f.record("LockLadder")
	if f.LockLadderFunc != nil {
		return f.LockLadderFunc(ctx, db, name)
	}
	return f.getLadder(name)
}

func (f *FakeLadderRepo) getLadder(name string) (*ladderdb.Ladder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.ladders[name]
	if !ok {
		return nil, ladderdb.ErrNotFound
	}
	return &l, nil
}

func (f *FakeLadderRepo) UpdateLadderState(ctx context.Context, db bun.IDB, name string, nextSequence int64, teamsCount, playersPerTeam int) error {
	f.record("UpdateLadderState")
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.ladders[name]
	if !ok {
		return ladderdb.ErrNotFound
	}
	l.NextSequence = nextSequence
	l.TeamsCount = teamsCount
	l.PlayersPerTeam = playersPerTeam
	f.ladders[name] = l
	return nil
}

func (f *FakeLadderRepo) UpdateLadderParams(ctx context.Context, db bun.IDB, ladder *ladderdb.Ladder) error {
	f.record("UpdateLadderParams")
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.ladders[ladder.Name]
	if !ok {
		return ladderdb.ErrNotFound
	}
	l.Mu = ladder.Mu
	l.Sigma = ladder.Sigma
	l.Beta = ladder.Beta
	l.Tau = ladder.Tau
	l.DrawProbability = ladder.DrawProbability
	f.ladders[ladder.Name] = l
	return nil
}

func (f *FakeLadderRepo) ListLaddersByOwner(ctx context.Context, db bun.IDB, owner string) ([]string, error) {
	f.record("ListLaddersByOwner")
	if f.ListLaddersByOwnerFunc != nil {
		return f.ListLaddersByOwnerFunc(ctx, db, owner)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, l := range f.ladders {
		if l.OwnerIdentity == owner {
			names = append(names, l.Name)
		}
	}
	slices.Sort(names)
	return names, nil
}

func (f *FakeLadderRepo) InsertMatch(ctx context.Context, db bun.IDB, match *ladderdb.Match) error {
	f.record("InsertMatch")
	if f.InsertMatchFunc != nil {
		return f.InsertMatchFunc(ctx, db, match)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches[match.Ladder] {
		if m.Sequence == match.Sequence {
			return ladderdb.ErrDuplicate
		}
	}
	f.matches[match.Ladder] = append(f.matches[match.Ladder], *match)
	return nil
}

func (f *FakeLadderRepo) GetMatch(ctx context.Context, db bun.IDB, ladder string, sequence int64) (*ladderdb.Match, error) {
	f.record("GetMatch")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches[ladder] {
		if m.Sequence == sequence {
			return &m, nil
		}
	}
	return nil, ladderdb.ErrNotFound
}

func (f *FakeLadderRepo) MarkMatchRemoved(ctx context.Context, db bun.IDB, ladder string, sequence int64, at time.Time) error {
	f.record("MarkMatchRemoved")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.matches[ladder] {
		if m.Sequence == sequence && m.RemovedAt == nil {
			f.matches[ladder][i].RemovedAt = &at
			return nil
		}
	}
	return ladderdb.ErrNotFound
}

func (f *FakeLadderRepo) ListMatches(ctx context.Context, db bun.IDB, ladder string, q ladderdb.MatchQuery) ([]ladderdb.Match, error) {
	f.record("ListMatches")
	if f.ListMatchesFunc != nil {
		return f.ListMatchesFunc(ctx, db, ladder, q)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ladderdb.Match
	for _, m := range f.matches[ladder] {
		if m.RemovedAt == nil {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b ladderdb.Match) int {
		if q.NewestFirst {
			return cmp.Compare(b.Sequence, a.Sequence)
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	if q.Offset > 0 {
		out = out[min(q.Offset, len(out)):]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *FakeLadderRepo) GetPlayers(ctx context.Context, db bun.IDB, ladder string, names []string) ([]ladderdb.Player, error) {
	f.record("GetPlayers")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ladderdb.Player
	for _, name := range names {
		if p, ok := f.players[ladder][name]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeLadderRepo) ListPlayers(ctx context.Context, db bun.IDB, ladder string) ([]ladderdb.Player, error) {
	f.record("ListPlayers")
	if f.ListPlayersFunc != nil {
		return f.ListPlayersFunc(ctx, db, ladder)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedPlayers(ladder), nil
}

func (f *FakeLadderRepo) sortedPlayers(ladder string) []ladderdb.Player {
	var out []ladderdb.Player
	for _, p := range f.players[ladder] {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b ladderdb.Player) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func (f *FakeLadderRepo) SearchPlayers(ctx context.Context, db bun.IDB, ladder, prefix string, limit int) ([]ladderdb.Player, error) {
	f.record("SearchPlayers")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ladderdb.Player
	for _, p := range f.players[ladder] {
		if strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(prefix)) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b ladderdb.Player) int {
		if c := cmp.Compare(b.LastSeenSequence, a.LastSeenSequence); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeLadderRepo) UpsertPlayers(ctx context.Context, db bun.IDB, players []ladderdb.Player) error {
	f.record("UpsertPlayers")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range players {
		if f.players[p.Ladder] == nil {
			f.players[p.Ladder] = map[string]ladderdb.Player{}
		}
		f.players[p.Ladder][p.Name] = p
	}
	return nil
}

func (f *FakeLadderRepo) InsertHistory(ctx context.Context, db bun.IDB, points []ladderdb.HistoryPoint) error {
	f.record("InsertHistory")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range points {
		f.history[h.Ladder] = append(f.history[h.Ladder], h)
	}
	return nil
}

func (f *FakeLadderRepo) GetHistory(ctx context.Context, db bun.IDB, ladder, player string) ([]ladderdb.HistoryPoint, error) {
	f.record("GetHistory")
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []ladderdb.HistoryPoint
	for _, h := range f.history[ladder] {
		if h.Player == player {
			out = append(out, h)
		}
	}
	slices.SortFunc(out, func(a, b ladderdb.HistoryPoint) int { return cmp.Compare(a.Sequence, b.Sequence) })
	return out, nil
}

func (f *FakeLadderRepo) ReplaceProjection(ctx context.Context, db bun.IDB, ladder string, players []ladderdb.Player, history []ladderdb.HistoryPoint) error {
	f.record("ReplaceProjection")
	if f.ReplaceProjectionFunc != nil {
		return f.ReplaceProjectionFunc(ctx, db, ladder, players, history)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	table := make(map[string]ladderdb.Player, len(players))
	for _, p := range players {
		table[p.Name] = p
	}
	f.players[ladder] = table
	f.history[ladder] = slices.Clone(history)
	return nil
}

// --- Accessors for assertions ---

func (f *FakeLadderRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Players returns the stored player rows of a ladder ordered by name.
func (f *FakeLadderRepo) Players(ladder string) []ladderdb.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedPlayers(ladder)
}

// Ensure the fake actually satisfies the interface
var _ ladderdb.Repository = (*FakeLadderRepo)(nil)

// ------------------------
// Fake Event Publisher
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type FakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent

	PublishFunc func(ctx context.Context, topic string, payload any) error
}

func (p *FakePublisher) Publish(ctx context.Context, topic string, payload any) error {
	p.mu.Lock()
	p.events = append(p.events, publishedEvent{Topic: topic, Payload: payload})
	p.mu.Unlock()
	if p.PublishFunc != nil {
		return p.PublishFunc(ctx, topic, payload)
	}
	return nil
}

func (p *FakePublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Topic
	}
	return out
}

func (p *FakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// ------------------------
// Fake Reprojection Scheduler
// ------------------------

type FakeScheduler struct {
	mu      sync.Mutex
	ladders []string

	ScheduleFunc func(ctx context.Context, ladder string) error
}

func (s *FakeScheduler) ScheduleReprojection(ctx context.Context, ladder string) error {
	s.mu.Lock()
	s.ladders = append(s.ladders, ladder)
	s.mu.Unlock()
	if s.ScheduleFunc != nil {
		return s.ScheduleFunc(ctx, ladder)
	}
	return nil
}

func (s *FakeScheduler) Scheduled() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ladders)
}

// ------------------------
// Recording Metrics
// ------------------------

// FakeMetrics records which operations were attempted.
type FakeMetrics struct {
	observability.NoopMetrics

	mu       sync.Mutex
	attempts []string
}

func (m *FakeMetrics) RecordOperationAttempt(_ context.Context, operation, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, operation)
}

func (m *FakeMetrics) Attempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.attempts)
}
