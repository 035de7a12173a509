package tui

import "github.com/charmbracelet/lipgloss"

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	CountdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	FrozenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7"))

	WinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	SlotStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Width(slotWidth).
			Padding(0, 1)

	SelectedSlotStyle = SlotStyle.
				BorderForeground(lipgloss.Color("#04B575"))

	SidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")).
			Padding(0, 1)
)

// cardColors maps standard card colors to terminal colors.
var cardColors = map[string]lipgloss.Color{
	"red":    lipgloss.Color("#FF6B6B"),
	"green":  lipgloss.Color("#04B575"),
	"purple": lipgloss.Color("#A78BFA"),
}
