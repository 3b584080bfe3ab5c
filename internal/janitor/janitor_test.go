package janitor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	games atomic.Int64
	users atomic.Int64
	seen  atomic.Int64 // last now passed in, unix seconds
}

func (c *countingSweeper) SweepGames(now time.Time) {
	c.games.Add(1)
	c.seen.Store(now.Unix())
}

func (c *countingSweeper) SweepUsers(now time.Time) {
	c.users.Add(1)
	c.seen.Store(now.Unix())
}

func TestRunFiresBothSweeps(t *testing.T) {
	sweeper := &countingSweeper{}
	j := New(sweeper, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j.Run(ctx, time.Millisecond, time.Millisecond)

	deadline := time.After(2 * time.Second)
	for sweeper.games.Load() == 0 || sweeper.users.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("sweeps did not fire: games=%d users=%d", sweeper.games.Load(), sweeper.users.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sweeper := &countingSweeper{}
	j := New(sweeper, nil)
	ctx, cancel := context.WithCancel(context.Background())
	j.Run(ctx, time.Millisecond, time.Millisecond)
	cancel()

	time.Sleep(20 * time.Millisecond)
	before := sweeper.games.Load() + sweeper.users.Load()
	time.Sleep(50 * time.Millisecond)
	after := sweeper.games.Load() + sweeper.users.Load()
	if after != before {
		t.Fatalf("sweeps kept firing after cancel: %d -> %d", before, after)
	}
}

func TestInjectedClockIsUsed(t *testing.T) {
	sweeper := &countingSweeper{}
	fixed := time.Unix(424242, 0)
	j := New(sweeper, func() time.Time { return fixed })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j.Run(ctx, time.Millisecond, time.Hour)

	deadline := time.After(2 * time.Second)
	for sweeper.games.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("game sweep did not fire")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := sweeper.seen.Load(); got != 424242 {
		t.Fatalf("sweep saw now=%d, want injected clock value", got)
	}
}
