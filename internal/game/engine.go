package game

import (
	"errors"
	"time"
)

var (
	ErrNotInProgress = errors.New("Invalid game or game not in progress")
	ErrNotYourTurn   = errors.New("Not your turn")
	ErrPositionTaken = errors.New("Position already taken")
)

// winLines are the 8 winning combinations: rows, columns, diagonals.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Apply validates and plays one move, mutating g in place. Checks run in
// order: game in progress, mover's turn, position free. A rejected move
// leaves g untouched.
func Apply(g *Game, playerID string, position int, now time.Time) error {
	if g == nil || g.Status != StatusInProgress {
		return ErrNotInProgress
	}
	if g.CurrentPlayer != playerID {
		return ErrNotYourTurn
	}
	if position < 0 || position > 8 || g.Board[position] != Empty {
		return ErrPositionTaken
	}

	g.Board[position] = g.Players[playerID]
	g.LastMoveTime = now.UnixMilli()
	g.Moves = append(g.Moves, Move{Player: playerID, Position: position, Timestamp: now.UnixMilli()})

	switch {
	case CheckWinner(g.Board) != Empty:
		g.Winner = playerID
		g.Status = StatusFinished
		g.IsGameOver = true
	case boardFull(g.Board):
		g.Status = StatusFinished
		g.IsGameOver = true
	default:
		g.CurrentPlayer = g.Opponent(playerID)
	}
	return nil
}

// CheckWinner returns the symbol holding a complete line, or Empty.
func CheckWinner(b Board) Symbol {
	for _, line := range winLines {
		a := b[line[0]]
		if a != Empty && a == b[line[1]] && a == b[line[2]] {
			return a
		}
	}
	return Empty
}

func boardFull(b Board) bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// Forfeit ends an in-progress game in favor of the leaver's opponent.
// A no-op on waiting or already finished games, so the disconnect,
// inactivity-sweep and double-disconnect paths can all call it safely.
func Forfeit(g *Game, leaverID string) bool {
	if g == nil || g.Status != StatusInProgress {
		return false
	}
	g.Winner = g.Opponent(leaverID)
	g.Status = StatusFinished
	g.IsGameOver = true
	return true
}

// ForceEnd terminates a game regardless of board state. An empty winnerID
// records a draw; used by the stale-game sweep and explicit endGame.
func ForceEnd(g *Game, winnerID string) bool {
	if g == nil || g.Status == StatusFinished {
		return false
	}
	g.Winner = winnerID
	g.Status = StatusFinished
	g.IsGameOver = true
	return true
}
