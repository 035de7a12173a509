// Package game implements the coordination core of a real-time set game:
// a single Dealer arbitrating many concurrently selecting Players over a
// shared Table.
//
// # Actors
//
// Dealer.Run starts one goroutine per player (plus one input goroutine per
// bot) and then runs the round loop on the calling goroutine:
//
//	d, err := game.NewDealer(cfg, game.WithDisplay(ui), game.WithLogger(logger))
//	result, err := d.Run(ctx)
//
// Bots mark slots through the blocking Player.OnSelectionEvent; keyboard
// capture uses Player.TrySelectionEvent, which drops presses the player
// cannot take right away. When a player's
// selection reaches the set size it submits itself to the dealer's FIFO
// validation queue and blocks on a private verdict inbox. The dealer drains
// the queue on its own goroutine, so no two validations ever run
// concurrently.
//
// # Timing
//
// Round deadlines and freezes are absolute instants taken from an injected
// quartz.Clock; repeated short sleeps never accumulate drift. Tests pass a
// quartz mock through WithClock.
//
// # Termination
//
// Cancelling the context given to Run, or calling Dealer.Terminate, stops
// every actor. Blocked waits observe the cancellation directly.
package game
