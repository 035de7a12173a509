package game

// Phase is the dealer's table phase. Only the dealer changes it; players
// read it through Gate before touching their marks.
type Phase int32

const (
	// PhaseDealing: the dealer is placing or removing cards.
	PhaseDealing Phase = iota
	// PhaseAccepting: players may mark and unmark slots.
	PhaseAccepting
	// PhaseClearing: the round ended and the table is being returned to the deck.
	PhaseClearing
	// PhaseFinished: the game is over.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhaseAccepting:
		return "accepting"
	case PhaseClearing:
		return "clearing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Gate is the read-only view of the dealer's phase.
type Gate interface {
	Phase() Phase
}
