// Package tui is the terminal front end: a Bubble Tea model that renders the
// table and turns key presses into selection events for the human player.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/setgame/cards"
)

const (
	slotWidth   = 20
	slotColumns = 4
	logHeight   = 6
)

// Selector is the human player as seen by the keyboard. *game.Player
// implements it. TrySelectionEvent must not block; it reports false when the
// press was dropped.
type Selector interface {
	TrySelectionEvent(slot int) bool
}

// Options configures a Model.
type Options struct {
	Rules     cards.Rules
	TableSize int
	GameID    string
	// Names maps player ids to names.
	Names []string
	// Human is the id of the player driven by the keyboard; Selector is
	// that player. A nil Selector makes the model a spectator.
	Human    int
	Selector Selector
	// OnQuit is called once when the user quits before the game is over.
	OnQuit func()
	Logger *log.Logger
}

// GameOverMsg tells the model the dealer has returned.
type GameOverMsg struct {
	Err error
}

// Model is the Bubble Tea model for a running game. All state is owned by
// the Bubble Tea event loop; game goroutines reach it only through messages
// sent by Display.
type Model struct {
	opts   Options
	keys   keyMap
	logger *log.Logger

	slots     []cards.Card
	marks     []map[int]bool // by player, set of slots
	scores    []int
	freezes   []int64
	countdown int64
	warn      bool
	deck      int
	hints     int
	winners   []int
	dropped   int

	eventLog    []string
	logViewport viewport.Model

	finished bool
	quitting bool
	width    int
	height   int
}

// NewModel creates a model.
func NewModel(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	players := len(opts.Names)
	m := &Model{
		opts:        opts,
		keys:        newKeyMap(opts.TableSize),
		logger:      opts.Logger.WithPrefix("tui"),
		slots:       make([]cards.Card, opts.TableSize),
		marks:       make([]map[int]bool, players),
		scores:      make([]int, players),
		freezes:     make([]int64, players),
		logViewport: viewport.New(slotColumns*(slotWidth+4), logHeight),
	}
	for i := range m.slots {
		m.slots[i] = cards.None
	}
	for i := range m.marks {
		m.marks[i] = make(map[int]bool)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case cardMsg:
		if m.validSlot(msg.slot) {
			m.slots[msg.slot] = msg.card
		}

	case tokenMsg:
		if m.validPlayer(msg.player) {
			if msg.placed {
				m.marks[msg.player][msg.slot] = true
			} else {
				delete(m.marks[msg.player], msg.slot)
			}
		}

	case countdownMsg:
		if msg.millis == 0 && m.countdown > 0 {
			m.addLogEntry("Round timed out")
		}
		m.countdown = msg.millis
		m.warn = msg.warn

	case freezeMsg:
		if m.validPlayer(msg.player) {
			m.freezes[msg.player] = msg.millis
		}

	case scoreMsg:
		if m.validPlayer(msg.player) {
			m.scores[msg.player] = msg.score
			m.addLogEntry(fmt.Sprintf("%s found a set (%d)", m.name(msg.player), msg.score))
		}

	case tableMsg:
		for slot, c := range msg.view.Slots {
			if m.validSlot(slot) {
				m.slots[slot] = c
			}
		}
		for player := range m.marks {
			clear(m.marks[player])
			for _, slot := range msg.view.Marks[player] {
				m.marks[player][slot] = true
			}
		}
		m.deck = msg.view.DeckRemaining
		m.hints = len(msg.view.Hints)

	case winnersMsg:
		m.winners = msg.players
		names := make([]string, len(msg.players))
		for i, p := range msg.players {
			names[i] = m.name(p)
		}
		m.addLogEntry("Winners: " + strings.Join(names, ", "))

	case GameOverMsg:
		m.finished = true
		if msg.Err != nil {
			m.addLogEntry(ErrorStyle.Render("Game failed: " + msg.Err.Error()))
		}
		m.addLogEntry("Game over, press esc to exit")
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		if !m.finished && m.opts.OnQuit != nil {
			m.opts.OnQuit()
		}
		return tea.Quit
	case key.Matches(msg, m.keys.ScrollUp):
		m.logViewport.ScrollUp(1)
		return nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.logViewport.ScrollDown(1)
		return nil
	}

	slot, ok := m.keys.slotFor(msg.String())
	if !ok || m.finished || m.opts.Selector == nil {
		return nil
	}
	// Presses go to the player from the event loop itself, so they arrive
	// in key order. Presses during a pending verdict or a freeze are
	// dropped, not queued.
	if !m.opts.Selector.TrySelectionEvent(slot) {
		m.dropped++
		m.logger.Debug("Dropped key press", "slot", slot)
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderGrid(), " ", m.renderSidebar()))
	b.WriteString("\n")

	m.logViewport.SetContent(strings.Join(m.eventLog, "\n"))
	b.WriteString(m.logViewport.View())
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("keys toggle slots • ↑↓ scroll log • esc to quit"))
	return b.String()
}

func (m *Model) renderHeader() string {
	title := HeaderStyle.Render("SET")
	if m.opts.GameID != "" {
		title += " " + InfoStyle.Render(m.opts.GameID)
	}

	var countdown string
	if m.warn {
		countdown = WarningStyle.Render(fmt.Sprintf("%.2fs", float64(m.countdown)/1000))
	} else {
		countdown = CountdownStyle.Render(fmt.Sprintf("%ds", (m.countdown+999)/1000))
	}
	deck := InfoStyle.Render(fmt.Sprintf("deck %d • sets on table %d", m.deck, m.hints))
	return strings.Join([]string{title, countdown, deck}, "  ")
}

func (m *Model) renderGrid() string {
	var rows []string
	var row []string
	for slot := range m.slots {
		row = append(row, m.renderSlot(slot))
		if len(row) == slotColumns {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderSlot(slot int) string {
	c := m.slots[slot]
	text := m.opts.Rules.Format(c)
	cardStyle := lipgloss.NewStyle()
	if a, ok := m.opts.Rules.Attributes(c); ok {
		cardStyle = cardStyle.Foreground(cardColors[a.Color])
		text = fmt.Sprintf("%s %s %s", a.Number, a.Shape, a.Shading)
	}

	var tokens []string
	for player := range m.marks {
		if m.marks[player][slot] {
			tokens = append(tokens, initial(m.name(player)))
		}
	}

	style := SlotStyle
	if m.validPlayer(m.opts.Human) && m.opts.Selector != nil && m.marks[m.opts.Human][slot] {
		style = SelectedSlotStyle
	}
	content := KeyStyle.Render(m.keys.slotLabel(slot)) + " " + cardStyle.Render(text) +
		"\n" + strings.Join(tokens, " ")
	return style.Render(content)
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render("Players"))
	b.WriteString("\n")
	for player := range m.scores {
		line := fmt.Sprintf("%-10s %3d", m.name(player), m.scores[player])
		switch {
		case m.isWinner(player):
			line = WinnerStyle.Render(line + " ★")
		case m.freezes[player] > 0:
			line += FrozenStyle.Render(fmt.Sprintf(" %.1fs", float64(m.freezes[player])/1000))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return SidebarStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) addLogEntry(entry string) {
	m.eventLog = append(m.eventLog, entry)
	m.logViewport.SetContent(strings.Join(m.eventLog, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) isWinner(player int) bool {
	for _, w := range m.winners {
		if w == player {
			return true
		}
	}
	return false
}

func (m *Model) name(player int) string {
	if player >= 0 && player < len(m.opts.Names) {
		return m.opts.Names[player]
	}
	return fmt.Sprintf("player-%d", player+1)
}

func (m *Model) validSlot(slot int) bool {
	return slot >= 0 && slot < len(m.slots)
}

func (m *Model) validPlayer(player int) bool {
	return player >= 0 && player < len(m.marks)
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
