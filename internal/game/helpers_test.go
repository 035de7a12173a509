package game

import (
	"io"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/setgame/cards"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// testConfig returns the standard deck with n bots and timings short enough
// for real-clock tests.
func testConfig(n int) Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.PointFreeze = 20 * time.Millisecond
	cfg.PenaltyFreeze = 60 * time.Millisecond
	cfg.FreezeTick = 5 * time.Millisecond
	cfg.BotInterval = time.Millisecond
	cfg.Players = make([]PlayerConfig, n)
	return cfg
}

func newTestDealer(t *testing.T, cfg Config, clock quartz.Clock, display Display) *Dealer {
	t.Helper()
	d, err := NewDealer(cfg,
		WithClock(clock),
		WithLogger(testLogger()),
		WithDisplay(display),
		WithGameID("test-game"),
	)
	require.NoError(t, err)
	return d
}

// layTable clears the table and puts the given cards on the given slots,
// taking them out of the deck so every card stays in exactly one place.
func layTable(t *testing.T, d *Dealer, layout map[int]cards.Card) {
	t.Helper()
	d.deck.Return(d.table.Reset()...)
	for slot, c := range layout {
		i := slices.Index(d.deck.cards, c)
		require.GreaterOrEqual(t, i, 0, "card %d not in deck", c)
		d.deck.cards = slices.Delete(d.deck.cards, i, i+1)
		require.NoError(t, d.table.PlaceCard(c, slot))
	}
	d.setPhase(PhaseAccepting)
}

func markAll(t *testing.T, table *Table, player int, slots ...int) {
	t.Helper()
	for _, slot := range slots {
		ok, _ := table.Mark(player, slot)
		require.True(t, ok, "player %d could not mark slot %d", player, slot)
	}
}

func receiveVerdict(t *testing.T, p *Player) Verdict {
	t.Helper()
	select {
	case v := <-p.inbox:
		return v
	case <-time.After(time.Second):
		t.Fatalf("player %d received no verdict", p.ID)
		return Verdict{}
	}
}

func requireNoVerdict(t *testing.T, p *Player) {
	t.Helper()
	select {
	case v := <-p.inbox:
		t.Fatalf("player %d unexpectedly received %v", p.ID, v.Outcome)
	default:
	}
}

func waitForCondition(t *testing.T, condition func() bool, timeout time.Duration, errMsg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(errMsg)
}

type countdown struct {
	millis int64
	warn   bool
}

// recordingDisplay keeps every notification for assertions.
type recordingDisplay struct {
	NullDisplay

	mu         sync.Mutex
	countdowns []countdown
	freezes    map[int][]int64
	scores     map[int][]int
	views      []TableView
	winners    [][]int
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{
		freezes: make(map[int][]int64),
		scores:  make(map[int][]int),
	}
}

func (r *recordingDisplay) SetCountdown(millis int64, warn bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.countdowns = append(r.countdowns, countdown{millis, warn})
}

func (r *recordingDisplay) SetFreeze(player int, millis int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freezes[player] = append(r.freezes[player], millis)
}

func (r *recordingDisplay) SetScore(player, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[player] = append(r.scores[player], score)
}

func (r *recordingDisplay) ShowTable(view TableView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *recordingDisplay) AnnounceWinners(players []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.winners = append(r.winners, slices.Clone(players))
}

func (r *recordingDisplay) Countdowns() []countdown {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.countdowns)
}

func (r *recordingDisplay) Freezes(player int) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.freezes[player])
}

func (r *recordingDisplay) Scores(player int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.scores[player])
}

func (r *recordingDisplay) Winners() [][]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.winners)
}

func (r *recordingDisplay) Views() []TableView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.views)
}
