package game

import "time"

type Symbol string

const (
	SymbolX Symbol = "X"
	SymbolO Symbol = "O"
	Empty   Symbol = ""
)

type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
)

// Board is the 3x3 grid in row-major order.
type Board [9]Symbol

// Move is one entry of a game's append-only move log.
type Move struct {
	Player    string `json:"player"`
	Position  int    `json:"position"`
	Timestamp int64  `json:"timestamp"`
}

// Game is the authoritative state of one match. Timestamps are epoch
// milliseconds to match the wire format.
type Game struct {
	ID            string            `json:"gameId"`
	Board         Board             `json:"board"`
	Players       map[string]Symbol `json:"players"`
	CurrentPlayer string            `json:"currentPlayer"`
	Winner        string            `json:"winner,omitempty"`
	IsGameOver    bool              `json:"isGameOver"`
	Status        Status            `json:"status"`
	StartTime     int64             `json:"startTime"`
	LastMoveTime  int64             `json:"lastMoveTime"`
	Spectators    []string          `json:"spectators"`
	Moves         []Move            `json:"moves"`
}

// New builds a waiting game. players must hold exactly two entries with
// distinct symbols; firstMover must be one of its keys.
func New(id string, players map[string]Symbol, firstMover string, now time.Time) *Game {
	ms := now.UnixMilli()
	return &Game{
		ID:            id,
		Players:       players,
		CurrentPlayer: firstMover,
		Status:        StatusWaiting,
		StartTime:     ms,
		LastMoveTime:  ms,
		Spectators:    []string{},
		Moves:         []Move{},
	}
}

// Opponent returns the other player id, or "" if playerID is not a player.
func (g *Game) Opponent(playerID string) string {
	for id := range g.Players {
		if id != playerID {
			return id
		}
	}
	return ""
}

// IsPlayer reports whether userID is one of the two players.
func (g *Game) IsPlayer(userID string) bool {
	_, ok := g.Players[userID]
	return ok
}

// AddSpectator records userID as a spectator. Players and duplicates are
// ignored; returns true if the set changed.
func (g *Game) AddSpectator(userID string) bool {
	if g.IsPlayer(userID) {
		return false
	}
	for _, id := range g.Spectators {
		if id == userID {
			return false
		}
	}
	g.Spectators = append(g.Spectators, userID)
	return true
}
