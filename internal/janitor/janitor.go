// Package janitor drives the periodic cleanup sweeps. It owns only the
// timers; the sweep logic lives with the orchestrator so that expiry
// re-enters the same termination paths as live traffic.
package janitor

import (
	"context"
	"time"
)

// Sweeper is implemented by the session orchestrator.
type Sweeper interface {
	SweepGames(now time.Time)
	SweepUsers(now time.Time)
}

type Janitor struct {
	sweeper Sweeper
	clock   func() time.Time
}

// New builds a janitor around sweeper. clock may be nil for wall time;
// tests inject a fake to advance time deterministically.
func New(sweeper Sweeper, clock func() time.Time) *Janitor {
	if clock == nil {
		clock = time.Now
	}
	return &Janitor{sweeper: sweeper, clock: clock}
}

// Run starts both sweep tickers until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, gameInterval, userInterval time.Duration) {
	if gameInterval <= 0 {
		gameInterval = time.Minute
	}
	if userInterval <= 0 {
		userInterval = 5 * time.Minute
	}
	gameTicker := time.NewTicker(gameInterval)
	userTicker := time.NewTicker(userInterval)
	go func() {
		defer gameTicker.Stop()
		defer userTicker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-gameTicker.C:
				j.sweeper.SweepGames(j.clock())
			case <-userTicker.C:
				j.sweeper.SweepUsers(j.clock())
			}
		}
	}()
}
