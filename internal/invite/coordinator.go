// Package invite brokers the invite/accept/decline handshake that turns
// two idle users into an in-progress game.
package invite

import (
	"tictac-arena/internal/game"
	"tictac-arena/internal/presence"
	"tictac-arena/internal/store"
)

// FirstMover selects who holds X and plays first.
type FirstMover string

const (
	FirstMoverInviter  FirstMover = "inviter"
	FirstMoverAcceptor FirstMover = "acceptor"
)

type Coordinator struct {
	presence        *presence.Registry
	store           *store.Store
	maxGamesPerUser int
	firstMover      FirstMover
}

func NewCoordinator(reg *presence.Registry, st *store.Store, maxGamesPerUser int, firstMover FirstMover) *Coordinator {
	if maxGamesPerUser <= 0 {
		maxGamesPerUser = 5
	}
	if firstMover != FirstMoverAcceptor {
		firstMover = FirstMoverInviter
	}
	return &Coordinator{
		presence:        reg,
		store:           st,
		maxGamesPerUser: maxGamesPerUser,
		firstMover:      firstMover,
	}
}

// Send validates an invite and creates the waiting game. Precondition
// order is fixed: distinct players, inviter's game limit, target
// reachable, target free. The inviter always gets X; who moves first
// depends on configuration.
func (c *Coordinator) Send(from, to string) (*game.Game, error) {
	if from == to {
		return nil, ErrSelfInvite
	}
	if c.store.CountInProgressFor(from) >= c.maxGamesPerUser {
		return nil, ErrGameLimit
	}
	if len(c.presence.ConnectionsFor(to)) == 0 {
		return nil, ErrTargetOffline
	}
	if c.store.IsUserActive(to) {
		return nil, ErrTargetBusy
	}

	players := map[string]game.Symbol{from: game.SymbolX, to: game.SymbolO}
	first := from
	if c.firstMover == FirstMoverAcceptor {
		first = to
	}
	return c.store.Create(players, first), nil
}

// Accept flips a waiting game to in-progress. The acceptor must be one of
// the two invited players.
func (c *Coordinator) Accept(gameID, playerID string) (*game.Game, error) {
	g, err := c.store.Get(gameID)
	if err != nil {
		return nil, err
	}
	if !g.IsPlayer(playerID) {
		return nil, ErrNotInvited
	}
	return c.store.Activate(gameID)
}

// Decline discards a pending invite. Only an invited player may decline,
// and only while the game is still waiting.
func (c *Coordinator) Decline(gameID, playerID string) error {
	g, err := c.store.Get(gameID)
	if err != nil {
		return err
	}
	if !g.IsPlayer(playerID) {
		return ErrNotInvited
	}
	if g.Status != game.StatusWaiting {
		return store.ErrInvalidState
	}
	c.store.Remove(gameID)
	return nil
}
