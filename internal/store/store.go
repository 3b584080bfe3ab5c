// Package store owns the authoritative set of in-flight games and the
// index from user id to the single game they are currently playing.
// All state is process memory; nothing survives a restart.
package store

import (
	"errors"
	"sync"
	"time"

	"tictac-arena/internal/game"
)

var (
	ErrGameNotFound = errors.New("Game not found")
	ErrInvalidState = errors.New("Game is not in a valid state for this operation")
)

type Store struct {
	mu          sync.Mutex
	games       map[string]*game.Game
	activeGames map[string]string // userId -> gameId, in-progress games only
	now         func() time.Time
}

func New() *Store {
	return &Store{
		games:       map[string]*game.Game{},
		activeGames: map[string]string{},
		now:         time.Now,
	}
}

// SetClock replaces the store's time source. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Create registers a new waiting game and returns it.
func (s *Store) Create(players map[string]game.Symbol, firstMover string) *game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := game.New(NewID(), players, firstMover, s.now())
	s.games[g.ID] = g
	return g
}

func (s *Store) Get(id string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

// Activate flips a waiting game to in-progress and indexes both players.
func (s *Store) Activate(id string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	if g.Status != game.StatusWaiting {
		return nil, ErrInvalidState
	}
	g.Status = game.StatusInProgress
	for playerID := range g.Players {
		s.activeGames[playerID] = id
	}
	return g, nil
}

// Release frees both players from the active index. Idempotent: win,
// timeout and disconnect can race to terminate the same game.
func (s *Store) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return
	}
	for playerID := range g.Players {
		if s.activeGames[playerID] == id {
			delete(s.activeGames, playerID)
		}
	}
}

// Remove drops the game record entirely (declined invites, sweep GC).
func (s *Store) Remove(id string) {
	s.mu.Lock()
	g, ok := s.games[id]
	if ok {
		for playerID := range g.Players {
			if s.activeGames[playerID] == id {
				delete(s.activeGames, playerID)
			}
		}
		delete(s.games, id)
	}
	s.mu.Unlock()
}

func (s *Store) CountInProgressFor(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, g := range s.games {
		if g.Status == game.StatusInProgress && g.IsPlayer(userID) {
			n++
		}
	}
	return n
}

func (s *Store) IsUserActive(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.activeGames[userID]
	return ok
}

// ActiveGameFor returns the game the user is currently playing, if any.
func (s *Store) ActiveGameFor(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.activeGames[userID]
	return id, ok
}

// StaleInProgress returns in-progress games whose last move predates cutoff.
func (s *Store) StaleInProgress(cutoff time.Time) []*game.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := cutoff.UnixMilli()
	var stale []*game.Game
	for _, g := range s.games {
		if g.Status == game.StatusInProgress && g.LastMoveTime < ms {
			stale = append(stale, g)
		}
	}
	return stale
}

// Expired returns ids of finished or still-waiting games untouched since
// cutoff, ready for garbage collection.
func (s *Store) Expired(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ms := cutoff.UnixMilli()
	var ids []string
	for id, g := range s.games {
		if g.Status != game.StatusInProgress && g.LastMoveTime < ms {
			ids = append(ids, id)
		}
	}
	return ids
}
