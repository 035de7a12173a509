package game

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/randutil"
)

// SetChecker decides whether cards form a set. cards.Rules implements it.
type SetChecker interface {
	TestSet(cs []cards.Card) bool
	// FindSets returns up to limit sets among cs; limit <= 0 means all.
	FindSets(cs []cards.Card, limit int) [][]cards.Card
}

// Finish reasons reported in Result.
const (
	ReasonNoSets     = "no_sets"
	ReasonTerminated = "terminated"
)

// Result summarises a finished game.
type Result struct {
	GameID    string        `json:"game_id"`
	Seed      int64         `json:"seed"`
	Reason    string        `json:"reason"`
	Winners   []int         `json:"winners"`
	Scores    []PlayerScore `json:"scores"`
	Rounds    int           `json:"rounds"`
	SetsFound int           `json:"sets_found"`
	Duration  time.Duration `json:"duration"`
}

// Option configures a Dealer.
type Option func(*Dealer)

// WithClock sets the clock used for every deadline and sleep.
func WithClock(clock quartz.Clock) Option {
	return func(d *Dealer) { d.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dealer) { d.logger = logger }
}

// WithDisplay sets the display sink.
func WithDisplay(display Display) Option {
	return func(d *Dealer) { d.display = display }
}

// WithSetChecker replaces the rules used to test and find sets.
func WithSetChecker(checker SetChecker) Option {
	return func(d *Dealer) { d.rules = checker }
}

// WithGameID sets the id reported in logs and the Result.
func WithGameID(id string) Option {
	return func(d *Dealer) { d.gameID = id }
}

// Dealer is the single coordinator. It owns the deck, the round deadline and
// the table phase, and it is the only goroutine that validates selections.
type Dealer struct {
	cfg     Config
	rules   SetChecker
	table   *Table
	deck    *Deck
	players []*Player
	queue   *validationQueue
	display Display
	clock   quartz.Clock
	logger  *log.Logger
	rng     *rand.Rand
	gameID  string
	seed    int64

	phase atomic.Int32

	// Owned by the Run goroutine.
	deadline  time.Time
	warn      bool
	refresh   bool
	rounds    int
	setsFound int

	stopCtx context.Context
	stop    context.CancelFunc
}

// NewDealer validates cfg and builds the table, deck and players.
func NewDealer(cfg Config, opts ...Option) (*Dealer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Dealer{
		cfg:     cfg,
		rules:   cfg.Rules,
		display: NullDisplay{},
		clock:   quartz.NewReal(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.gameID == "" {
		d.gameID = uuid.Must(uuid.NewV7()).String()
	}
	d.logger = d.logger.WithPrefix("dealer").With("game", d.gameID)

	seed, generated := randutil.Seed(cfg.Seed)
	if generated {
		d.logger.Debug("Generated seed", "seed", seed)
	}
	d.seed = seed
	d.rng = randutil.Stream(seed, 0)

	d.table = NewTable(cfg.TableSize, len(cfg.Players), cfg.SetSize(), d.display)
	d.deck = NewDeck(cfg.Rules.NewDeck(cfg.EffectiveDeckSize()))
	d.queue = newValidationQueue(len(cfg.Players))
	d.stopCtx, d.stop = context.WithCancel(context.Background())

	d.players = make([]*Player, len(cfg.Players))
	for i, pc := range cfg.Players {
		if pc.Name == "" {
			pc.Name = fmt.Sprintf("player-%d", i+1)
		}
		d.players[i] = newPlayer(i, pc, cfg, d.table, d, d.display, d.clock, d.logger,
			randutil.Stream(seed, uint64(i)+1))
	}
	return d, nil
}

// Players returns the players, indexed by id.
func (d *Dealer) Players() []*Player {
	return d.players
}

// Table returns the shared table.
func (d *Dealer) Table() *Table {
	return d.table
}

// GameID returns the id of this game.
func (d *Dealer) GameID() string {
	return d.gameID
}

// Seed returns the seed in use.
func (d *Dealer) Seed() int64 {
	return d.seed
}

// Phase implements Gate.
func (d *Dealer) Phase() Phase {
	return Phase(d.phase.Load())
}

// Submit queues p for validation and wakes the dealer. Players call it at
// most once per completed selection.
func (d *Dealer) Submit(p *Player) {
	d.queue.push(p)
}

// Terminate stops the game. It is safe to call more than once and from any
// goroutine.
func (d *Dealer) Terminate() {
	d.stop()
}

// Run plays the game until no set is left or it is terminated, then stops
// every player and announces the winners.
func (d *Dealer) Run(ctx context.Context) (Result, error) {
	d.logger.Info("Dealer starting", "players", len(d.players), "deck", d.deck.Len(), "seed", d.seed)
	start := d.clock.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopWatch := context.AfterFunc(d.stopCtx, cancel)
	defer stopWatch()

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range d.players {
		g.Go(func() error { return p.Run(gctx) })
	}

	for !d.shouldFinish(ctx) {
		d.rounds++
		d.logger.Debug("Round starting", "round", d.rounds, "deck", d.deck.Len())
		d.placeCardsOnTable()
		d.updateTimerDisplay(true)
		d.timerLoop(ctx)
		d.updateTimerDisplay(false)
		d.removeAllCardsFromTable()
	}
	d.setPhase(PhaseFinished)

	reason := ReasonTerminated
	if !d.setsRemain() {
		reason = ReasonNoSets
	}
	cancel()
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("player stopped with error: %w", err)
	}

	result := d.announceWinners(start, reason)
	d.logger.Info("Dealer terminated", "reason", reason, "winners", result.Winners,
		"rounds", result.Rounds, "sets", result.SetsFound)
	return result, nil
}

// timerLoop runs one round until its deadline passes or the game stops.
func (d *Dealer) timerLoop(ctx context.Context) {
	for !d.terminated(ctx) && d.clock.Now().Before(d.deadline) {
		d.sleepUntilWokenOrTimeout(ctx)
		d.updateTimerDisplay(false)
		d.removeCardsFromTable()
		d.placeCardsOnTable()
		if d.exhausted() {
			d.logger.Debug("Deck empty and no set on the table, ending round", "round", d.rounds)
			return
		}
	}
}

func (d *Dealer) terminated(ctx context.Context) bool {
	return ctx.Err() != nil || d.stopCtx.Err() != nil
}

// shouldFinish reports whether the game is over: termination was requested
// or no set exists among the deck and the table.
func (d *Dealer) shouldFinish(ctx context.Context) bool {
	if d.terminated(ctx) {
		return true
	}
	return !d.setsRemain()
}

func (d *Dealer) setsRemain() bool {
	pool := append(d.deck.Cards(), d.table.Cards()...)
	return len(d.rules.FindSets(pool, 1)) > 0
}

// exhausted reports whether the current round can no longer progress.
func (d *Dealer) exhausted() bool {
	return d.deck.Len() == 0 && len(d.rules.FindSets(d.table.Cards(), 1)) == 0
}

// placeCardsOnTable fills empty slots in slot order with random cards from
// the deck. With an empty deck and an elapsed deadline no reshuffle can bring
// new cards, so the game ends here unless a set is still left.
func (d *Dealer) placeCardsOnTable() {
	d.setPhase(PhaseDealing)
	defer d.setPhase(PhaseAccepting)

	if d.deck.Len() > 0 {
		for _, slot := range d.table.EmptySlots() {
			card, ok := d.deck.Draw(d.rng)
			if !ok {
				break
			}
			if err := d.table.PlaceCard(card, slot); err != nil {
				d.logger.Error("Failed to place card", "card", card, "slot", slot, "error", err)
				d.deck.Return(card)
				continue
			}
			d.refresh = true
		}
	} else if !d.deadline.IsZero() && !d.clock.Now().Before(d.deadline) && !d.setsRemain() {
		d.logger.Info("Deck empty at round timeout and no set left, terminating")
		d.Terminate()
	}

	if d.refresh {
		d.showTable()
		d.refresh = false
	}
}

// showTable sends the coalesced redraw with the sets currently on the table.
func (d *Dealer) showTable() {
	view := d.table.Snapshot()
	view.DeckRemaining = d.deck.Len()

	slotOf := make(map[cards.Card]int, len(view.Slots))
	for slot, c := range view.Slots {
		if c.Valid() {
			slotOf[c] = slot
		}
	}
	for _, set := range d.rules.FindSets(d.table.Cards(), 0) {
		group := make([]int, len(set))
		for i, c := range set {
			group[i] = slotOf[c]
		}
		view.Hints = append(view.Hints, group)
	}

	if d.cfg.Hints {
		for _, group := range view.Hints {
			d.logger.Debug("Hint", "slots", group)
		}
	}
	d.display.ShowTable(view)
}

// sleepUntilWokenOrTimeout waits one tick, shortened to the deadline. A
// submission wakes it early.
func (d *Dealer) sleepUntilWokenOrTimeout(ctx context.Context) {
	tick := d.cfg.Tick
	if d.warn {
		tick = d.cfg.WarningTick
	}
	if remaining := d.clock.Until(d.deadline); remaining < tick {
		tick = remaining
	}
	if tick <= 0 {
		return
	}

	timer := d.clock.NewTimer(tick, "dealer", "tick")
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-d.stopCtx.Done():
	case <-d.queue.wake:
	case <-timer.C:
	}
}

// updateTimerDisplay publishes the countdown. With reset the round deadline
// restarts at the full duration. Reaching zero raises the refresh flag so
// the next deal redraws the table.
func (d *Dealer) updateTimerDisplay(reset bool) {
	now := d.clock.Now()
	if reset {
		d.deadline = now.Add(d.cfg.RoundDuration)
	}
	remaining := d.deadline.Sub(now)
	d.warn = remaining <= d.cfg.WarningThreshold

	if remaining <= 0 {
		d.display.SetCountdown(0, d.warn)
		d.refresh = true
		return
	}
	d.display.SetCountdown(remaining.Milliseconds(), d.warn)
}

// removeCardsFromTable drains the players queued when the drain starts, in
// FIFO order.
func (d *Dealer) removeCardsFromTable() {
	n := d.queue.len()
	for range n {
		p, ok := d.queue.pop()
		if !ok {
			return
		}
		d.checkSelection(p)
	}
}

// checkSelection validates one queued player and delivers its verdict.
func (d *Dealer) checkSelection(p *Player) {
	slots, cs := d.table.Selection(p.ID)
	if len(slots) != d.cfg.SetSize() {
		d.logger.Debug("Selection withdrawn", "player", p.ID, "marks", len(slots))
		p.deliver(Verdict{Outcome: VerdictWithdrawn})
		return
	}

	if !d.rules.TestSet(cs) {
		d.logger.Debug("Set rejected", "player", p.ID, "slots", slots)
		p.deliver(Verdict{Outcome: VerdictRejected})
		return
	}

	d.setPhase(PhaseDealing)
	affected := make(map[int]bool)
	for _, slot := range slots {
		_, lost, _ := d.table.RemoveCard(slot)
		for _, id := range lost {
			affected[id] = true
		}
	}
	d.setPhase(PhaseAccepting)

	delete(affected, p.ID)
	for _, other := range d.queue.retract(func(q *Player) bool { return affected[q.ID] }) {
		d.logger.Debug("Selection retracted", "player", other.ID, "by", p.ID)
		other.deliver(Verdict{Outcome: VerdictWithdrawn})
	}

	score := p.addPoint()
	d.setsFound++
	d.refresh = true
	d.updateTimerDisplay(true)
	d.logger.Info("Set accepted", "player", p.ID, "slots", slots, "score", score)
	p.deliver(Verdict{Outcome: VerdictAccepted, Score: score})
}

// removeAllCardsFromTable ends the round: every card goes back to the deck,
// all marks are cleared and queued players are released without a verdict.
func (d *Dealer) removeAllCardsFromTable() {
	d.setPhase(PhaseClearing)
	returned := d.table.Reset()
	d.deck.Return(returned...)
	for _, p := range d.queue.clear() {
		p.deliver(Verdict{Outcome: VerdictWithdrawn})
	}
	d.refresh = true
	d.logger.Debug("Table cleared", "returned", len(returned), "deck", d.deck.Len())
}

// announceWinners computes and publishes the winner set once.
func (d *Dealer) announceWinners(start time.Time, reason string) Result {
	scores := make([]PlayerScore, len(d.players))
	for i, p := range d.players {
		scores[i] = PlayerScore{ID: p.ID, Name: p.Name, Score: p.Score()}
	}
	winners := Winners(scores)
	d.display.AnnounceWinners(winners)

	return Result{
		GameID:    d.gameID,
		Seed:      d.seed,
		Reason:    reason,
		Winners:   winners,
		Scores:    scores,
		Rounds:    d.rounds,
		SetsFound: d.setsFound,
		Duration:  d.clock.Since(start),
	}
}

func (d *Dealer) setPhase(p Phase) {
	d.phase.Store(int32(p))
}
