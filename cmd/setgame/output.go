package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/setgame/cards"
	"github.com/lox/setgame/internal/game"
	"github.com/lox/setgame/internal/statistics"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			MarginBottom(1)

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// renderResult shows the final standings of one game.
func renderResult(result game.Result) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Game over"))
	sb.WriteString("\n")

	t := newTable("Player", "Sets", "")
	for _, s := range result.Scores {
		mark := ""
		if slices.Contains(result.Winners, s.ID) {
			mark = winnerStyle.Render("★ winner")
		}
		t.Row(s.Name, strconv.Itoa(s.Score), mark)
	}
	sb.WriteString(t.Render())
	sb.WriteString("\n")

	sb.WriteString(dimStyle.Render(fmt.Sprintf("game %s • seed %d • %d rounds • %s • %s",
		result.GameID, result.Seed, result.Rounds, result.Duration.Round(time.Millisecond), result.Reason)))
	sb.WriteString("\n")
	return sb.String()
}

// renderStatistics shows the aggregate of a simulation run.
func renderStatistics(stats *statistics.Statistics) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d games", stats.Games)))
	sb.WriteString("\n")

	lo, hi := stats.ConfidenceInterval95()
	fmt.Fprintf(&sb, "Sets per game: %.2f ± %.2f (median %.1f, 95%% CI %.2f..%.2f)\n",
		stats.MeanSets(), stats.StdDevSets(), stats.MedianSets(), lo, hi)
	fmt.Fprintf(&sb, "Rounds per game: %.2f\n", stats.MeanRounds())
	fmt.Fprintf(&sb, "Mean duration: %s\n", stats.MeanDuration().Round(time.Millisecond))

	reasons := make([]string, 0, len(stats.Reasons))
	for reason, n := range stats.Reasons {
		reasons = append(reasons, fmt.Sprintf("%s=%d", reason, n))
	}
	slices.Sort(reasons)
	fmt.Fprintf(&sb, "Finished: %s\n\n", strings.Join(reasons, " "))

	t := newTable("Seat", "Wins", "Solo", "Win rate", "Mean sets")
	for i, seat := range stats.Seats {
		t.Row(seat.Name,
			strconv.Itoa(seat.Wins),
			strconv.Itoa(seat.Solo),
			fmt.Sprintf("%.1f%%", 100*stats.WinRate(i)),
			fmt.Sprintf("%.2f", stats.MeanPoints(i)))
	}
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	return sb.String()
}

// renderSets lists the cards on a table and every set among them.
func renderSets(rules cards.Rules, dealt []cards.Card, sets [][]cards.Card) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%d cards, %d sets", len(dealt), len(sets))))
	sb.WriteString("\n")

	t := newTable("Slot", "Card")
	for slot, c := range dealt {
		t.Row(strconv.Itoa(slot), rules.Format(c))
	}
	sb.WriteString(t.Render())
	sb.WriteString("\n")

	if len(sets) == 0 {
		sb.WriteString(dimStyle.Render("No sets on this table"))
		sb.WriteString("\n")
		return sb.String()
	}
	for _, set := range sets {
		slots := make([]string, len(set))
		for i, c := range set {
			slots[i] = strconv.Itoa(slices.Index(dealt, c))
		}
		fmt.Fprintf(&sb, "%s  %s\n", winnerStyle.Render("["+strings.Join(slots, " ")+"]"), formatCards(rules, set))
	}
	return sb.String()
}

func formatCards(rules cards.Rules, cs []cards.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = rules.Format(c)
	}
	return strings.Join(parts, " | ")
}
