// Package statistics aggregates the results of many games, e.g. from a
// headless simulation run.
package statistics

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lox/setgame/internal/game"
)

// SeatStats tracks one seat across games. Seats are matched by player id.
type SeatStats struct {
	Name   string
	Wins   int // games where the seat was among the winners
	Solo   int // games the seat won alone
	Points []float64
}

// Statistics tracks results across games.
type Statistics struct {
	Games     int
	Reasons   map[string]int
	Sets      []float64 // sets found per game
	Rounds    []float64
	Durations []time.Duration
	Seats     []SeatStats

	totalSets   int
	totalPoints int
}

// Add incorporates a finished game.
func (s *Statistics) Add(result game.Result) {
	if s.Reasons == nil {
		s.Reasons = make(map[string]int)
	}
	s.Games++
	s.Reasons[result.Reason]++
	s.Sets = append(s.Sets, float64(result.SetsFound))
	s.Rounds = append(s.Rounds, float64(result.Rounds))
	s.Durations = append(s.Durations, result.Duration)
	s.totalSets += result.SetsFound

	for _, ps := range result.Scores {
		for len(s.Seats) <= ps.ID {
			s.Seats = append(s.Seats, SeatStats{})
		}
		seat := &s.Seats[ps.ID]
		seat.Name = ps.Name
		seat.Points = append(seat.Points, float64(ps.Score))
		s.totalPoints += ps.Score
	}
	for _, id := range result.Winners {
		if id < 0 || id >= len(s.Seats) {
			continue
		}
		s.Seats[id].Wins++
		if len(result.Winners) == 1 {
			s.Seats[id].Solo++
		}
	}
}

// MeanSets returns the mean number of sets found per game.
func (s *Statistics) MeanSets() float64 {
	if len(s.Sets) == 0 {
		return 0
	}
	return stat.Mean(s.Sets, nil)
}

// StdDevSets returns the sample standard deviation of sets per game.
func (s *Statistics) StdDevSets() float64 {
	if len(s.Sets) < 2 {
		return 0
	}
	return stat.StdDev(s.Sets, nil)
}

// MedianSets returns the median number of sets per game.
func (s *Statistics) MedianSets() float64 {
	if len(s.Sets) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Sets)
	slices.Sort(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
// sets per game, using the t-distribution.
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.MeanSets()
	n := len(s.Sets)
	if n < 2 {
		return mean, mean
	}
	tDist := distuv.StudentsT{
		Nu:    float64(n - 1),
		Mu:    0,
		Sigma: 1,
	}
	// Two-tailed 95% CI uses 97.5th percentile
	margin := tDist.Quantile(0.975) * s.StdDevSets() / math.Sqrt(float64(n))
	return mean - margin, mean + margin
}

// MeanRounds returns the mean number of rounds per game.
func (s *Statistics) MeanRounds() float64 {
	if len(s.Rounds) == 0 {
		return 0
	}
	return stat.Mean(s.Rounds, nil)
}

// MeanDuration returns the mean wall time per game.
func (s *Statistics) MeanDuration() time.Duration {
	if len(s.Durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.Durations {
		total += d
	}
	return total / time.Duration(len(s.Durations))
}

// WinRate returns the share of games the seat won, ties included.
func (s *Statistics) WinRate(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Games == 0 {
		return 0
	}
	return float64(s.Seats[seat].Wins) / float64(s.Games)
}

// MeanPoints returns the seat's mean score per game.
func (s *Statistics) MeanPoints(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || len(s.Seats[seat].Points) == 0 {
		return 0
	}
	return stat.Mean(s.Seats[seat].Points, nil)
}

// Validate checks that the points handed out match the sets found.
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}
	if s.totalPoints != s.totalSets {
		return fmt.Errorf("ledger mismatch: %d points for %d sets", s.totalPoints, s.totalSets)
	}
	for i, seat := range s.Seats {
		if seat.Wins > s.Games {
			return fmt.Errorf("seat %d: wins (%d) exceed games (%d)", i, seat.Wins, s.Games)
		}
	}
	return nil
}
