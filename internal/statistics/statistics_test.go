package statistics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lox/setgame/internal/game"
)

func result(sets, rounds int, winners []int, scores ...int) game.Result {
	r := game.Result{
		Reason:    game.ReasonNoSets,
		SetsFound: sets,
		Rounds:    rounds,
		Winners:   winners,
		Duration:  time.Second,
	}
	for id, score := range scores {
		r.Scores = append(r.Scores, game.PlayerScore{ID: id, Name: string(rune('a' + id)), Score: score})
	}
	return r
}

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	if stats.MeanSets() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.MeanSets())
	}
	if stats.StdDevSets() != 0 {
		t.Errorf("Expected stddev of 0 for empty stats, got %f", stats.StdDevSets())
	}
	if stats.MedianSets() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.MedianSets())
	}
	if stats.WinRate(0) != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.WinRate(0))
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected validation error for empty stats")
	}
}

func TestStatistics_SingleGame(t *testing.T) {
	stats := &Statistics{}
	stats.Add(result(5, 2, []int{1}, 2, 3))

	if stats.Games != 1 {
		t.Errorf("Expected 1 game, got %d", stats.Games)
	}
	if stats.MeanSets() != 5 {
		t.Errorf("Expected mean of 5, got %f", stats.MeanSets())
	}
	if stats.StdDevSets() != 0 {
		t.Errorf("Expected stddev of 0 for single game, got %f", stats.StdDevSets())
	}
	low, high := stats.ConfidenceInterval95()
	if low != 5 || high != 5 {
		t.Errorf("Expected degenerate interval at 5, got [%f, %f]", low, high)
	}
	if stats.Seats[1].Solo != 1 || stats.Seats[1].Wins != 1 {
		t.Errorf("Expected a solo win for seat 1, got %+v", stats.Seats[1])
	}
	if stats.Seats[0].Name != "a" {
		t.Errorf("Expected seat 0 named a, got %q", stats.Seats[0].Name)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_MultipleGames(t *testing.T) {
	stats := &Statistics{}
	stats.Add(result(2, 1, []int{0}, 2, 0))
	stats.Add(result(4, 1, []int{0, 1}, 2, 2))
	stats.Add(result(6, 3, []int{1}, 1, 5))
	stats.Add(result(8, 3, []int{1}, 3, 5))

	if stats.MeanSets() != 5 {
		t.Errorf("Expected mean of 5, got %f", stats.MeanSets())
	}
	// Sample variance of 2,4,6,8 is 20/3
	if math.Abs(stats.StdDevSets()-math.Sqrt(20.0/3)) > 1e-9 {
		t.Errorf("Expected stddev of %f, got %f", math.Sqrt(20.0/3), stats.StdDevSets())
	}
	if stats.MedianSets() != 5 {
		t.Errorf("Expected median of 5, got %f", stats.MedianSets())
	}
	if stats.MeanRounds() != 2 {
		t.Errorf("Expected mean rounds of 2, got %f", stats.MeanRounds())
	}
	if stats.MeanDuration() != time.Second {
		t.Errorf("Expected mean duration of 1s, got %v", stats.MeanDuration())
	}

	low, high := stats.ConfidenceInterval95()
	if low >= 5 || high <= 5 || math.Abs((low+high)/2-5) > 1e-9 {
		t.Errorf("Expected interval centred on 5, got [%f, %f]", low, high)
	}
	// t(0.975, 3) is about 3.18, wider than the normal 1.96
	if margin := high - 5; margin < 1.96*stats.StdDevSets()/2 {
		t.Errorf("Expected t-based margin, got %f", margin)
	}

	if stats.WinRate(0) != 0.5 {
		t.Errorf("Expected seat 0 win rate of 0.5, got %f", stats.WinRate(0))
	}
	if stats.WinRate(1) != 0.75 {
		t.Errorf("Expected seat 1 win rate of 0.75, got %f", stats.WinRate(1))
	}
	if stats.Seats[1].Solo != 2 {
		t.Errorf("Expected 2 solo wins for seat 1, got %d", stats.Seats[1].Solo)
	}
	if stats.MeanPoints(1) != 3 {
		t.Errorf("Expected seat 1 mean points of 3, got %f", stats.MeanPoints(1))
	}
	if stats.Reasons[game.ReasonNoSets] != 4 {
		t.Errorf("Expected 4 no-set finishes, got %d", stats.Reasons[game.ReasonNoSets])
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestStatistics_LedgerMismatch(t *testing.T) {
	stats := &Statistics{}
	stats.Add(result(3, 1, []int{0}, 1, 1))

	err := stats.Validate()
	if err == nil || !strings.Contains(err.Error(), "ledger mismatch") {
		t.Errorf("Expected ledger mismatch, got %v", err)
	}
}
