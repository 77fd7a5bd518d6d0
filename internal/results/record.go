package results

import (
	"errors"
	"fmt"
	"time"

	"github.com/park285/Cheese-chess-engine/internal/game"
)

var (
	// ErrDuplicateGame means a result for the game id is already stored.
	ErrDuplicateGame = errors.New("game result already stored")
	// ErrNotFinished means the game has not reached Over.
	ErrNotFinished = errors.New("game is not finished")
)

// Record is one finished game.
type Record struct {
	ID       int64
	GameID   string
	White    game.PlayerID
	Black    game.PlayerID
	Winner   game.PlayerID
	Result   game.Result
	StartFEN string
	FinalFEN string
	MovesUCI []string
	MovesSAN []string
	PGN      string
	EndedAt  time.Time
}

// Stats aggregates a player's finished games.
type Stats struct {
	Player       game.PlayerID
	GamesPlayed  int
	Wins         int
	Losses       int
	Draws        int
	LastPlayedAt time.Time
}

// FromGame captures a finished game for storage, including its PGN.
func FromGame(gameID string, g *game.GameState, endedAt time.Time) (*Record, error) {
	if g == nil {
		return nil, fmt.Errorf("nil game %s", gameID)
	}
	if g.Status != game.Over {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFinished)
	}
	rec := &Record{
		GameID:   gameID,
		White:    g.White,
		Black:    g.Black,
		Winner:   g.Winner,
		Result:   g.Result,
		StartFEN: g.StartFEN,
		FinalFEN: g.FEN(),
		MovesUCI: g.MovesUCI(),
		MovesSAN: append([]string{}, g.SAN...),
		EndedAt:  endedAt.UTC(),
	}
	rec.PGN = BuildPGN(rec, g.PlyOffset)
	return rec, nil
}

// tally folds one finished game into s from s.Player's point of view.
func (s *Stats) tally(rec *Record) {
	s.GamesPlayed++
	switch rec.Winner {
	case "":
		s.Draws++
	case s.Player:
		s.Wins++
	default:
		s.Losses++
	}
	if rec.EndedAt.After(s.LastPlayedAt) {
		s.LastPlayedAt = rec.EndedAt
	}
}
