// Package game implements the two-player chess game: move validation and
// application, check/checkmate/stalemate derivation, the seat and draw
// lifecycle, and FEN/SAN export. It is synchronous and holds no locks; the
// hosting layer serialises commands per game.
package game

import (
	"fmt"
	"strings"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

// PlayerID is an opaque player identity supplied by the hosting layer.
// The empty value means "nobody".
type PlayerID string

// Status is the lifecycle state of a game.
type Status uint8

const (
	WaitingToStart Status = iota
	InProgress
	Over
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Over:
		return "over"
	default:
		return "waiting_to_start"
	}
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "waiting_to_start":
		*s = WaitingToStart
	case "in_progress":
		*s = InProgress
	case "over":
		*s = Over
	default:
		return fmt.Errorf("invalid status %q", string(b))
	}
	return nil
}

// Result is how a finished game ended.
type Result string

const (
	ResultNone        Result = ""
	ResultCheckmate   Result = "checkmate"
	ResultStalemate   Result = "stalemate"
	ResultResignation Result = "resignation"
	ResultAgreement   Result = "agreement"
)

// GameState is the complete state of one game. Side to move is derived from
// the move log, never stored.
type GameState struct {
	Board         board.Board  `json:"board"`
	MoveLog       []board.Move `json:"moveLog"`
	SAN           []string     `json:"san"`
	Status        Status       `json:"status"`
	White         PlayerID     `json:"white,omitempty"`
	Black         PlayerID     `json:"black,omitempty"`
	Winner        PlayerID     `json:"winner,omitempty"`
	DrawOffer     PlayerID     `json:"drawOffer,omitempty"`
	HalfMoveClock int          `json:"halfMoveClock"`
	Result        Result       `json:"result,omitempty"`

	// PlyOffset counts plies played before MoveLog began; non-zero only for
	// positions imported from FEN.
	PlyOffset int `json:"plyOffset,omitempty"`
	// ImportedEnPassant is the en passant target of an imported position; it
	// applies only while MoveLog is empty.
	ImportedEnPassant *board.Square `json:"importedEnPassant,omitempty"`
	// StartFEN is the imported starting position; empty for standard games.
	StartFEN string `json:"startFen,omitempty"`
}

// New returns a game waiting for players, set up in the standard position.
func New() *GameState {
	return &GameState{
		Board:   board.Standard(),
		MoveLog: []board.Move{},
		SAN:     []string{},
		Status:  WaitingToStart,
	}
}

// NewFromBoard starts a waiting game on a custom position with White to move.
// A malformed board is a programming error and panics.
func NewFromBoard(b board.Board) *GameState {
	if err := b.Validate(); err != nil {
		panic(fmt.Sprintf("game: malformed board: %v", err))
	}
	g := New()
	g.Board = b
	return g
}

// SideToMove derives whose turn it is from the move log.
func (g *GameState) SideToMove() board.Color {
	if (g.PlyOffset+len(g.MoveLog))%2 == 0 {
		return board.White
	}
	return board.Black
}

// FullMoveNumber is the FEN full-move counter.
func (g *GameState) FullMoveNumber() int {
	return (g.PlyOffset+len(g.MoveLog))/2 + 1
}

// Seat returns the player assigned to color c.
func (g *GameState) Seat(c board.Color) PlayerID {
	if c == board.White {
		return g.White
	}
	return g.Black
}

// ColorOf returns the color player sits at.
func (g *GameState) ColorOf(player PlayerID) (board.Color, bool) {
	switch {
	case player == "":
		return 0, false
	case player == g.White:
		return board.White, true
	case player == g.Black:
		return board.Black, true
	}
	return 0, false
}

// Opponent returns the other seated player, if any.
func (g *GameState) Opponent(player PlayerID) PlayerID {
	c, ok := g.ColorOf(player)
	if !ok {
		return ""
	}
	return g.Seat(c.Opposite())
}

// LastMove returns the most recent move.
func (g *GameState) LastMove() (board.Move, bool) {
	if len(g.MoveLog) == 0 {
		return board.Move{}, false
	}
	return g.MoveLog[len(g.MoveLog)-1], true
}

// EnPassantTarget is the square behind a pawn that double-stepped on the
// previous move.
func (g *GameState) EnPassantTarget() *board.Square {
	last, ok := g.LastMove()
	if !ok {
		return g.ImportedEnPassant
	}
	if sq, ok := last.EnPassantTarget(); ok {
		return &sq
	}
	return nil
}

// InCheck reports whether color c is currently in check.
func (g *GameState) InCheck(c board.Color) bool {
	return board.IsInCheck(&g.Board, c)
}

// Clone deep-copies the state.
func (g *GameState) Clone() *GameState {
	c := *g
	c.MoveLog = append([]board.Move(nil), g.MoveLog...)
	c.SAN = append([]string(nil), g.SAN...)
	if g.ImportedEnPassant != nil {
		sq := *g.ImportedEnPassant
		c.ImportedEnPassant = &sq
	}
	return &c
}

// MovesUCI lists the move log in coordinate notation.
func (g *GameState) MovesUCI() []string {
	out := make([]string, len(g.MoveLog))
	for i, m := range g.MoveLog {
		out[i] = m.UCI()
	}
	return out
}

func (g *GameState) String() string {
	var sb strings.Builder
	sb.WriteString(g.Board.String())
	fmt.Fprintf(&sb, "\n%s to move, status %s", g.SideToMove(), g.Status)
	return sb.String()
}
