package game

import (
	"context"
	"errors"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// ErrPlayerTerminated is returned by OnSelectionEvent once the player's
// goroutine has exited.
var ErrPlayerTerminated = errors.New("player terminated")

// State is a player's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateSelecting
	StatePendingVerdict
	StateFrozen
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StatePendingVerdict:
		return "pending"
	case StateFrozen:
		return "frozen"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Outcome is the dealer's decision on a submitted selection.
type Outcome int

const (
	// VerdictWithdrawn: the selection went stale before it was checked. No
	// freeze applies.
	VerdictWithdrawn Outcome = iota
	VerdictAccepted
	VerdictRejected
)

func (o Outcome) String() string {
	switch o {
	case VerdictWithdrawn:
		return "withdrawn"
	case VerdictAccepted:
		return "accepted"
	case VerdictRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Verdict is the single message the dealer sends a player per submission.
type Verdict struct {
	Outcome Outcome
	// Score is the player's score after an accepted set.
	Score int
}

// coordinator is the dealer as seen by a player.
type coordinator interface {
	Gate
	Submit(p *Player)
}

// Player is one participant's actor. Human players are driven by external
// input; bots run a second goroutine that presses random slots.
type Player struct {
	ID    int
	Name  string
	human bool

	cfg     Config
	table   *Table
	dealer  coordinator
	display Display
	clock   quartz.Clock
	logger  *log.Logger
	rng     *rand.Rand

	keys  chan int // blocking hand-off from OnSelectionEvent
	input chan int // buffered keyboard presses from TrySelectionEvent
	inbox chan Verdict
	done  chan struct{}

	state atomic.Int32
	score atomic.Int64
}

func newPlayer(id int, pc PlayerConfig, cfg Config, table *Table, dealer coordinator,
	display Display, clock quartz.Clock, logger *log.Logger, rng *rand.Rand) *Player {
	return &Player{
		ID:      id,
		Name:    pc.Name,
		human:   pc.Human,
		cfg:     cfg,
		table:   table,
		dealer:  dealer,
		display: display,
		clock:   clock,
		logger:  logger.WithPrefix("player").With("player", id, "name", pc.Name),
		rng:     rng,
		keys:    make(chan int),
		input:   make(chan int, keyBuffer(pc.Human, cfg)),
		inbox:   make(chan Verdict, 1),
		done:    make(chan struct{}),
	}
}

// keyBuffer sizes the keyboard input channel so a burst of presses is taken
// in press order.
func keyBuffer(human bool, cfg Config) int {
	if !human {
		return 0
	}
	return cfg.TableSize
}

// Human reports whether the player takes external input.
func (p *Player) Human() bool {
	return p.human
}

// Score returns the player's current score.
func (p *Player) Score() int {
	return int(p.score.Load())
}

// State returns the player's lifecycle state.
func (p *Player) State() State {
	return State(p.state.Load())
}

// AcceptsInput reports whether a selection event would be handled right
// away, i.e. the player is neither pending a verdict nor frozen.
func (p *Player) AcceptsInput() bool {
	s := p.State()
	return s == StateIdle || s == StateSelecting
}

// Done is closed when the player's goroutine has exited.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// OnSelectionEvent is the blocking input entry point used by the bot
// goroutine. It blocks until the player takes the event, ctx is done, or the
// player terminates. Keyboard capture uses TrySelectionEvent instead; both
// feed the same state machine, which only takes events while idle or
// selecting.
func (p *Player) OnSelectionEvent(ctx context.Context, slot int) error {
	select {
	case p.keys <- slot:
		return nil
	case <-p.done:
		return ErrPlayerTerminated
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySelectionEvent hands slot to the player without blocking and reports
// whether it was taken. Presses are dropped while the player is pending a
// verdict, frozen, or holding a full key buffer. Successive calls from one
// goroutine are handled in call order.
func (p *Player) TrySelectionEvent(slot int) bool {
	if !p.AcceptsInput() {
		return false
	}
	select {
	case p.input <- slot:
		return true
	default:
		return false
	}
}

// Run is the player's main loop. It returns when ctx is cancelled, after
// the bot input goroutine (if any) has exited.
func (p *Player) Run(ctx context.Context) error {
	p.logger.Info("Player starting", "human", p.human)

	var bot sync.WaitGroup
	if !p.human {
		bot.Add(1)
		go func() {
			defer bot.Done()
			p.runBot(ctx)
		}()
	}
	defer func() {
		bot.Wait()
		p.setState(StateTerminated)
		close(p.done)
		p.logger.Info("Player terminated", "score", p.Score())
	}()

	for {
		if p.table.MarkCount(p.ID) > 0 {
			p.setState(StateSelecting)
		} else {
			p.setState(StateIdle)
		}

		select {
		case <-ctx.Done():
			return nil
		case slot := <-p.keys:
			if !p.handle(ctx, slot) {
				return nil
			}
		case slot := <-p.input:
			if !p.handle(ctx, slot) {
				return nil
			}
		}
	}
}

// handle applies one selection event and, when it completes a selection,
// waits out the verdict. Keyboard presses that arrived in the meantime are
// dropped. It returns false when ctx was cancelled.
func (p *Player) handle(ctx context.Context, slot int) bool {
	if !p.toggle(slot) {
		return true
	}
	if !p.awaitVerdict(ctx) {
		return false
	}
	p.discardInput()
	return true
}

// toggle applies one selection event and reports whether it completed a
// selection of exactly the set size.
func (p *Player) toggle(slot int) bool {
	if p.dealer.Phase() != PhaseAccepting {
		return false
	}
	if p.table.Unmark(p.ID, slot) {
		return false
	}
	ok, count := p.table.Mark(p.ID, slot)
	return ok && count == p.cfg.SetSize()
}

// awaitVerdict submits the selection and blocks on the inbox. It returns
// false when ctx was cancelled.
func (p *Player) awaitVerdict(ctx context.Context) bool {
	p.setState(StatePendingVerdict)
	p.dealer.Submit(p)

	var v Verdict
	select {
	case <-ctx.Done():
		return false
	case v = <-p.inbox:
	}
	p.logger.Debug("Verdict received", "outcome", v.Outcome, "score", v.Score)

	switch v.Outcome {
	case VerdictAccepted:
		p.display.SetScore(p.ID, v.Score)
		p.table.ClearMarks(p.ID)
		return p.freeze(ctx, p.cfg.PointFreeze)
	case VerdictRejected:
		return p.freeze(ctx, p.cfg.PenaltyFreeze)
	default:
		return true
	}
}

// discardInput drops keyboard presses buffered while a verdict was pending
// or the player was frozen.
func (p *Player) discardInput() {
	for {
		select {
		case slot := <-p.input:
			p.logger.Debug("Dropped key press", "slot", slot)
		default:
			return
		}
	}
}

// deliver hands a verdict to the player. The inbox holds exactly one
// verdict and a player is queued at most once, so this never blocks.
func (p *Player) deliver(v Verdict) {
	select {
	case p.inbox <- v:
	default:
		p.logger.Error("Dropped verdict, inbox full", "outcome", v.Outcome)
	}
}

// addPoint commits a point on the dealer's goroutine and returns the new score.
func (p *Player) addPoint() int {
	return int(p.score.Add(1))
}

// freeze blocks new selections until now+d, publishing the remaining time
// every FreezeTick. It returns false when ctx was cancelled.
func (p *Player) freeze(ctx context.Context, d time.Duration) bool {
	p.setState(StateFrozen)
	defer p.display.SetFreeze(p.ID, 0)

	deadline := p.clock.Now().Add(d)
	for {
		remaining := deadline.Sub(p.clock.Now())
		if remaining <= 0 {
			return true
		}
		p.display.SetFreeze(p.ID, remaining.Milliseconds())

		timer := p.clock.NewTimer(min(remaining, p.cfg.FreezeTick), "player", "freeze")
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}

// runBot presses a random slot every BotInterval. A press blocks while the
// player is pending or frozen, so input is delayed rather than dropped.
func (p *Player) runBot(ctx context.Context) {
	p.logger.Info("Bot input starting")
	defer p.logger.Info("Bot input terminated")

	for {
		slot := p.rng.IntN(p.cfg.TableSize)
		if err := p.OnSelectionEvent(ctx, slot); err != nil {
			return
		}

		timer := p.clock.NewTimer(p.cfg.BotInterval, "bot", "interval")
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (p *Player) setState(s State) {
	p.state.Store(int32(s))
}
