package game

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/randutil"
)

// fakeCoordinator stands in for the dealer: it exposes a settable phase and
// records submissions without ever answering them.
type fakeCoordinator struct {
	phase     atomic.Int32
	submitted chan *Player
}

func newFakeCoordinator() *fakeCoordinator {
	f := &fakeCoordinator{submitted: make(chan *Player, 8)}
	f.phase.Store(int32(PhaseAccepting))
	return f
}

func (f *fakeCoordinator) Phase() Phase     { return Phase(f.phase.Load()) }
func (f *fakeCoordinator) Submit(p *Player) { f.submitted <- p }

func (f *fakeCoordinator) requireSubmission(t *testing.T, p *Player) {
	t.Helper()
	select {
	case got := <-f.submitted:
		require.Same(t, p, got)
	case <-time.After(time.Second):
		t.Fatal("expected a submission")
	}
}

func (f *fakeCoordinator) requireNoSubmission(t *testing.T) {
	t.Helper()
	select {
	case p := <-f.submitted:
		t.Fatalf("unexpected submission from player %d", p.ID)
	default:
	}
}

type playerHarness struct {
	player  *Player
	coord   *fakeCoordinator
	display *recordingDisplay
	cancel  context.CancelFunc
	errs    chan error
}

func startPlayer(t *testing.T, human bool, cfg Config) *playerHarness {
	t.Helper()

	display := newRecordingDisplay()
	table := NewTable(cfg.TableSize, 1, cfg.SetSize(), display)
	for slot := range cfg.TableSize {
		require.NoError(t, table.PlaceCard(cards.Card(slot), slot))
	}

	h := &playerHarness{
		coord:   newFakeCoordinator(),
		display: display,
		errs:    make(chan error, 1),
	}
	h.player = newPlayer(0, PlayerConfig{Name: "tester", Human: human}, cfg, table, h.coord,
		display, quartz.NewReal(), testLogger(), randutil.New(3))

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.errs <- h.player.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.player.Done()
	})
	return h
}

func (h *playerHarness) press(t *testing.T, slots ...int) {
	t.Helper()
	for _, slot := range slots {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := h.player.OnSelectionEvent(ctx, slot)
		cancel()
		require.NoError(t, err, "press slot %d", slot)
	}
}

func (h *playerHarness) waitForMarks(t *testing.T, n int) {
	t.Helper()
	waitForCondition(t, func() bool { return h.player.table.MarkCount(0) == n }, time.Second,
		"player never reached the expected mark count")
}

func (h *playerHarness) waitForState(t *testing.T, s State) {
	t.Helper()
	waitForCondition(t, func() bool { return h.player.State() == s }, 2*time.Second,
		"player never reached state "+s.String())
}

func TestPlayerSubmitsCompleteSelection(t *testing.T) {
	t.Parallel()

	h := startPlayer(t, true, testConfig(1))
	assert.True(t, h.player.AcceptsInput())

	h.press(t, 0, 1)
	h.waitForMarks(t, 2)
	h.press(t, 1)
	h.waitForMarks(t, 1)
	h.coord.requireNoSubmission(t)

	h.press(t, 2, 3)
	h.coord.requireSubmission(t, h.player)
	assert.Equal(t, []int{0, 2, 3}, h.player.table.SelectedSlots(0))
	assert.Equal(t, StatePendingVerdict, h.player.State())
	assert.False(t, h.player.AcceptsInput())
}

func TestPlayerRejectedSelectionFreezesForPenalty(t *testing.T) {
	t.Parallel()

	cfg := testConfig(1)
	h := startPlayer(t, true, cfg)

	h.press(t, 0, 1, 3)
	h.coord.requireSubmission(t, h.player)

	start := time.Now()
	h.player.deliver(Verdict{Outcome: VerdictRejected})
	h.waitForState(t, StateSelecting)
	assert.GreaterOrEqual(t, time.Since(start), cfg.PenaltyFreeze)

	freezes := h.display.Freezes(0)
	require.NotEmpty(t, freezes)
	assert.LessOrEqual(t, freezes[0], cfg.PenaltyFreeze.Milliseconds())
	assert.Zero(t, freezes[len(freezes)-1], "freeze display must end at zero")
	assert.Empty(t, h.display.Scores(0))

	// The wrong selection stays on the table; a full selection ignores new slots.
	assert.Equal(t, []int{0, 1, 3}, h.player.table.SelectedSlots(0))
	h.press(t, 5, 0)
	h.waitForMarks(t, 2)
	h.coord.requireNoSubmission(t)

	h.press(t, 5)
	h.coord.requireSubmission(t, h.player)
	assert.Equal(t, []int{1, 3, 5}, h.player.table.SelectedSlots(0))
}

func TestPlayerAcceptedSelectionFreezesForPoint(t *testing.T) {
	t.Parallel()

	cfg := testConfig(1)
	h := startPlayer(t, true, cfg)

	h.press(t, 0, 1, 2)
	h.coord.requireSubmission(t, h.player)

	start := time.Now()
	h.player.deliver(Verdict{Outcome: VerdictAccepted, Score: 1})
	h.waitForState(t, StateIdle)
	assert.GreaterOrEqual(t, time.Since(start), cfg.PointFreeze)

	assert.Equal(t, []int{1}, h.display.Scores(0))
	assert.Zero(t, h.player.table.MarkCount(0))
	assert.NotEmpty(t, h.display.Freezes(0))
}

func TestPlayerWithdrawnSelectionSkipsFreeze(t *testing.T) {
	t.Parallel()

	h := startPlayer(t, true, testConfig(1))

	h.press(t, 4, 5, 6)
	h.coord.requireSubmission(t, h.player)
	h.player.table.RemoveCard(5)

	h.player.deliver(Verdict{Outcome: VerdictWithdrawn})
	h.waitForState(t, StateSelecting)

	assert.Empty(t, h.display.Freezes(0))
	assert.Equal(t, []int{4, 6}, h.player.table.SelectedSlots(0))
}

func TestPlayerTakesKeyboardBurstInOrder(t *testing.T) {
	t.Parallel()

	h := startPlayer(t, true, testConfig(1))

	// Four presses back to back: the first three form the selection in press
	// order, the fourth is dropped rather than held until after the verdict.
	require.True(t, h.player.TrySelectionEvent(4))
	require.True(t, h.player.TrySelectionEvent(2))
	require.True(t, h.player.TrySelectionEvent(7))
	h.player.TrySelectionEvent(9)

	h.coord.requireSubmission(t, h.player)
	assert.Equal(t, []int{4, 2, 7}, h.player.table.SelectedSlots(0))

	h.player.deliver(Verdict{Outcome: VerdictAccepted, Score: 1})
	h.waitForState(t, StateIdle)
	assert.Zero(t, h.player.table.MarkCount(0))
	h.coord.requireNoSubmission(t)
}

func TestPlayerDropsKeyboardInputDuringVerdict(t *testing.T) {
	t.Parallel()

	cfg := testConfig(1)
	cfg.PointFreeze = 200 * time.Millisecond
	cfg.PenaltyFreeze = 400 * time.Millisecond
	h := startPlayer(t, true, cfg)

	for _, slot := range []int{0, 1, 2} {
		require.True(t, h.player.TrySelectionEvent(slot))
	}
	h.coord.requireSubmission(t, h.player)

	assert.False(t, h.player.TrySelectionEvent(5), "press while pending must be dropped")

	h.player.deliver(Verdict{Outcome: VerdictAccepted, Score: 1})
	h.waitForState(t, StateFrozen)
	assert.False(t, h.player.TrySelectionEvent(6), "press while frozen must be dropped")

	h.waitForState(t, StateIdle)
	assert.Zero(t, h.player.table.MarkCount(0))

	require.True(t, h.player.TrySelectionEvent(8))
	h.waitForMarks(t, 1)
	assert.Equal(t, []int{8}, h.player.table.SelectedSlots(0))
}

func TestPlayerIgnoresInputWhileGateClosed(t *testing.T) {
	t.Parallel()

	h := startPlayer(t, true, testConfig(1))
	h.coord.phase.Store(int32(PhaseDealing))

	// The second press is only taken once the first has been handled.
	h.press(t, 0, 0)
	assert.Zero(t, h.player.table.MarkCount(0))

	h.coord.phase.Store(int32(PhaseAccepting))
	h.press(t, 0)
	h.waitForMarks(t, 1)
}

func TestPlayerTerminatesWhilePending(t *testing.T) {
	t.Parallel()

	h := startPlayer(t, true, testConfig(1))
	h.press(t, 0, 1, 2)
	h.coord.requireSubmission(t, h.player)

	h.cancel()
	select {
	case err := <-h.errs:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("player did not stop while waiting for a verdict")
	}
	assert.Equal(t, StateTerminated, h.player.State())
	assert.ErrorIs(t, h.player.OnSelectionEvent(context.Background(), 0), ErrPlayerTerminated)
}

func TestPlayerTerminatesWhileFrozen(t *testing.T) {
	t.Parallel()

	cfg := testConfig(1)
	cfg.PenaltyFreeze = time.Hour
	h := startPlayer(t, true, cfg)

	h.press(t, 0, 1, 3)
	h.coord.requireSubmission(t, h.player)
	h.player.deliver(Verdict{Outcome: VerdictRejected})
	h.waitForState(t, StateFrozen)

	h.cancel()
	select {
	case <-h.player.Done():
	case <-time.After(time.Second):
		t.Fatal("player did not stop while frozen")
	}
	freezes := h.display.Freezes(0)
	require.NotEmpty(t, freezes)
	assert.Zero(t, freezes[len(freezes)-1])
}

func TestBotBacksOffWhilePending(t *testing.T) {
	t.Parallel()

	h := startPlayer(t, false, testConfig(1))
	h.coord.requireSubmission(t, h.player)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, h.player.table.MarkCount(0))
	assert.Equal(t, StatePendingVerdict, h.player.State())
	h.coord.requireNoSubmission(t)

	// After the penalty the bot keeps pressing and completes a new selection.
	h.player.deliver(Verdict{Outcome: VerdictRejected})
	h.coord.requireSubmission(t, h.player)
}

func TestBotStopsWithPlayer(t *testing.T) {
	t.Parallel()

	h := startPlayer(t, false, testConfig(1))
	h.coord.requireSubmission(t, h.player)

	h.cancel()
	select {
	case err := <-h.errs:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bot player did not stop")
	}
	assert.Equal(t, StateTerminated, h.player.State())
}
