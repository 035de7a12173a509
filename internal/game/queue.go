package game

import "sync"

// validationQueue is the FIFO of players waiting for a verdict. Players push
// from their own goroutines; only the dealer pops, retracts and clears.
// Every push also posts a coalesced wake-up for the dealer's sleep.
type validationQueue struct {
	mu      sync.Mutex
	players []*Player
	wake    chan struct{}
}

func newValidationQueue(capacity int) *validationQueue {
	return &validationQueue{
		players: make([]*Player, 0, capacity),
		wake:    make(chan struct{}, 1),
	}
}

func (q *validationQueue) push(p *Player) {
	q.mu.Lock()
	q.players = append(q.players, p)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *validationQueue) pop() (*Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.players) == 0 {
		return nil, false
	}
	p := q.players[0]
	q.players[0] = nil
	q.players = q.players[1:]
	return p, true
}

func (q *validationQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}

// retract removes and returns every queued player matching drop, keeping the
// order of the rest.
func (q *validationQueue) retract(drop func(*Player) bool) []*Player {
	q.mu.Lock()
	defer q.mu.Unlock()
	var removed []*Player
	kept := q.players[:0]
	for _, p := range q.players {
		if drop(p) {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	clear(q.players[len(kept):])
	q.players = kept
	return removed
}

// clear empties the queue and returns what was in it.
func (q *validationQueue) clear() []*Player {
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := q.players
	q.players = make([]*Player, 0, cap(removed))
	return removed
}
