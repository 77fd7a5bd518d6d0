package game

import (
	"errors"
	"fmt"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

// Move rejections. State is left untouched whenever one of these is returned.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrNoSuchPiece        = errors.New("no such piece")
	ErrIllegalShape       = errors.New("illegal move shape")
	ErrMovesIntoCheck     = errors.New("move leaves king in check")
	ErrInvalidMoveRequest = errors.New("invalid move request")
)

// Seat and lifecycle rejections.
var (
	ErrAlreadyInGame     = errors.New("player already in game")
	ErrGameFull          = errors.New("game is full")
	ErrPlayerNotInGame   = errors.New("player not in game")
	ErrGameNotInProgress = errors.New("game not in progress")
	ErrNoDrawOffer       = errors.New("no draw offer to answer")
	ErrInvalidPlayer     = errors.New("invalid player id")
)

// MoveError carries the attempted move and the rule it broke.
type MoveError struct {
	Player PlayerID
	Move   board.Move
	Err    error
}

func (e *MoveError) Error() string {
	if e.Move.From.Valid() && e.Move.To.Valid() {
		return fmt.Sprintf("move %s by %s rejected: %v", e.Move.UCI(), e.Player, e.Err)
	}
	return fmt.Sprintf("move by %s rejected: %v", e.Player, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// SeatError carries the player and lifecycle operation that was refused.
type SeatError struct {
	Player PlayerID
	Op     string
	Err    error
}

func (e *SeatError) Error() string {
	return fmt.Sprintf("%s by %q rejected: %v", e.Op, e.Player, e.Err)
}

func (e *SeatError) Unwrap() error { return e.Err }

func moveErr(player PlayerID, m board.Move, err error) error {
	return &MoveError{Player: player, Move: m, Err: err}
}

func seatErr(op string, player PlayerID, err error) error {
	return &SeatError{Player: player, Op: op, Err: err}
}
