package game

// PlayerScore is a player's final standing.
type PlayerScore struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Winners returns the ids of every player holding the highest score, in the
// order given. Ties produce several winners.
func Winners(scores []PlayerScore) []int {
	if len(scores) == 0 {
		return nil
	}
	best := scores[0].Score
	var winners []int
	for _, s := range scores {
		switch {
		case s.Score > best:
			best = s.Score
			winners = append(winners[:0], s.ID)
		case s.Score == best:
			winners = append(winners, s.ID)
		}
	}
	return winners
}
