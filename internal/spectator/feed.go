// Package spectator serves a read-only live view of a game over HTTP and
// WebSocket.
package spectator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 256
)

// Feed is a game.Display that keeps a snapshot of the game and broadcasts
// every notification to connected spectators. Broadcasting never blocks the
// game: a spectator whose buffer is full is disconnected.
type Feed struct {
	rules    cards.Rules
	clock    quartz.Clock
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	state   State
	clients map[*client]struct{}
}

// Options configures a Feed.
type Options struct {
	GameID    string
	Rules     cards.Rules
	TableSize int
	Names     []string
	Clock     quartz.Clock
	Logger    *log.Logger
}

// NewFeed creates a feed with an empty table.
func NewFeed(opts Options) *Feed {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	slots := make([]int, opts.TableSize)
	for i := range slots {
		slots[i] = int(cards.None)
	}
	return &Feed{
		rules:  opts.Rules,
		clock:  opts.Clock,
		logger: opts.Logger.WithPrefix("spectator").With("game", opts.GameID),
		upgrader: websocket.Upgrader{
			// Read-only feed; any origin may watch.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		state: State{
			GameID: opts.GameID,
			Names:  append([]string(nil), opts.Names...),
			Slots:  slots,
			Scores: make([]int, len(opts.Names)),
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP routes of the feed.
func (f *Feed) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/state", f.handleState)
	r.Get("/healthz", handleHealth)
	r.Get("/ws", f.handleWebSocket)
	return r
}

// Serve listens on addr until ctx is done, then shuts the server down and
// disconnects every spectator.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           f.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		f.logger.Info("Spectator feed listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		f.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	f.Close()
	return err
}

// Close disconnects every spectator.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for c := range f.clients {
		delete(f.clients, c)
		c.close()
	}
}

// State returns a copy of the current snapshot.
func (f *Feed) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state.clone()
}

// Clients returns the number of connected spectators.
func (f *Feed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

func (f *Feed) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f.State()); err != nil {
		f.logger.Error("Failed to write state", "error", err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (f *Feed) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	f.mu.Lock()
	msg, err := newMessage(MessageTypeState, f.state, f.clock.Now())
	if err == nil {
		c.send <- msg
		f.clients[c] = struct{}{}
	}
	total := len(f.clients)
	f.mu.Unlock()
	if err != nil {
		f.logger.Error("Failed to encode state", "error", err)
		_ = conn.Close()
		return
	}

	f.logger.Info("Spectator connected", "total", total)
	go c.writePump(f.logger)
	go func() {
		c.readPump()
		f.remove(c)
		f.logger.Info("Spectator disconnected")
	}()
}

// broadcast applies update to the snapshot and sends the message to every
// spectator, under one lock so new spectators never miss an event.
func (f *Feed) broadcast(t MessageType, data any, update func(*State)) {
	msg, err := newMessage(t, data, f.clock.Now())
	if err != nil {
		f.logger.Error("Failed to encode message", "type", t, "error", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if update != nil {
		update(&f.state)
	}
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			f.logger.Warn("Spectator send buffer full, disconnecting")
			delete(f.clients, c)
			c.close()
		}
	}
}

func (f *Feed) remove(c *client) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.clients[c]; ok {
		delete(f.clients, c)
		c.close()
	}
}

func (f *Feed) PlaceCard(card cards.Card, slot int) {
	f.broadcast(MessageTypeCard, CardData{Slot: slot, Card: int(card), Label: f.rules.Format(card)}, func(s *State) {
		if slot >= 0 && slot < len(s.Slots) {
			s.Slots[slot] = int(card)
		}
	})
}

func (f *Feed) RemoveCard(slot int) {
	f.broadcast(MessageTypeCard, CardData{Slot: slot, Card: int(cards.None)}, func(s *State) {
		if slot >= 0 && slot < len(s.Slots) {
			s.Slots[slot] = int(cards.None)
		}
	})
}

func (f *Feed) PlaceToken(player, slot int) {
	f.broadcast(MessageTypeToken, TokenData{Player: player, Slot: slot, Placed: true}, nil)
}

func (f *Feed) RemoveToken(player, slot int) {
	f.broadcast(MessageTypeToken, TokenData{Player: player, Slot: slot}, nil)
}

// SetCountdown implements game.Display. The dealer ticks every few
// milliseconds near the end of a round, so only whole-second changes and
// warning transitions are broadcast.
func (f *Feed) SetCountdown(millis int64, warn bool) {
	f.mu.RLock()
	prev, prevWarn := f.state.Countdown, f.state.Warn
	f.mu.RUnlock()
	update := func(s *State) { s.Countdown, s.Warn = millis, warn }
	if prev/1000 == millis/1000 && prevWarn == warn && millis != 0 {
		f.mu.Lock()
		update(&f.state)
		f.mu.Unlock()
		return
	}
	f.broadcast(MessageTypeCountdown, CountdownData{Millis: millis, Warn: warn}, update)
}

func (f *Feed) SetFreeze(player int, millis int64) {
	f.broadcast(MessageTypeFreeze, FreezeData{Player: player, Millis: millis}, nil)
}

func (f *Feed) SetScore(player, score int) {
	f.broadcast(MessageTypeScore, ScoreData{Player: player, Score: score}, func(s *State) {
		if player >= 0 && player < len(s.Scores) {
			s.Scores[player] = score
		}
	})
}

func (f *Feed) ShowTable(view game.TableView) {
	data := TableData{
		Slots: make([]int, len(view.Slots)),
		Marks: view.Marks,
		Hints: view.Hints,
		Deck:  view.DeckRemaining,
	}
	for i, c := range view.Slots {
		data.Slots[i] = int(c)
	}
	f.broadcast(MessageTypeTable, data, func(s *State) {
		s.Slots = append(s.Slots[:0], data.Slots...)
		s.Deck = data.Deck
	})
}

func (f *Feed) AnnounceWinners(players []int) {
	f.broadcast(MessageTypeWinners, WinnersData{Players: players}, func(s *State) {
		s.Winners = append([]int(nil), players...)
	})
}
