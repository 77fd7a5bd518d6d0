package game

import (
	"fmt"
	"strings"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

// MoveRequest is a move as it arrives from a client. PieceKind may be left
// zero, in which case the piece on From is assumed.
type MoveRequest struct {
	PieceKind board.PieceKind `json:"pieceKind,omitempty"`
	From      board.Square    `json:"from"`
	To        board.Square    `json:"to"`
	Promotion board.PieceKind `json:"promotion,omitempty"`
}

func (r MoveRequest) String() string {
	s := r.From.String() + r.To.String()
	if r.Promotion.Valid() {
		s += strings.ToLower(string(r.Promotion.Letter()))
	}
	return s
}

// ParseMoveRequest reads coordinate notation: "e2e4", or "e7e8q" with a
// promotion letter.
func ParseMoveRequest(raw string) (MoveRequest, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if len(v) != 4 && len(v) != 5 {
		return MoveRequest{}, fmt.Errorf("%w: %q", ErrInvalidMoveRequest, raw)
	}
	from, err := board.ParseSquare(v[0:2])
	if err != nil {
		return MoveRequest{}, fmt.Errorf("%w: %v", ErrInvalidMoveRequest, err)
	}
	to, err := board.ParseSquare(v[2:4])
	if err != nil {
		return MoveRequest{}, fmt.Errorf("%w: %v", ErrInvalidMoveRequest, err)
	}
	req := MoveRequest{From: from, To: to}
	if len(v) == 5 {
		kind, err := board.ParsePieceKind(v[4:])
		if err != nil || kind == board.King || kind == board.Pawn {
			return MoveRequest{}, fmt.Errorf("%w: promotion %q", ErrInvalidMoveRequest, v[4:])
		}
		req.Promotion = kind
	}
	return req, nil
}

// Resolve turns a request into a Move against the current board. A request
// for an empty square, or naming the wrong kind, yields a Move that
// ApplyMove rejects with ErrNoSuchPiece after the turn checks.
func (g *GameState) Resolve(player PlayerID, req MoveRequest) (board.Move, error) {
	m := board.Move{From: req.From, To: req.To, Promotion: req.Promotion}
	if !req.From.Valid() || !req.To.Valid() {
		return m, moveErr(player, m, ErrInvalidMoveRequest)
	}
	m.Piece = board.Piece{Kind: req.PieceKind, Color: g.SideToMove()}
	if p, ok := g.Board.At(req.From); ok && (req.PieceKind == 0 || req.PieceKind == p.Kind) {
		m.Piece = p
	}
	return m, nil
}

// Play resolves req and applies it, returning the move as recorded.
func (g *GameState) Play(player PlayerID, req MoveRequest) (board.Move, error) {
	m, err := g.Resolve(player, req)
	if err != nil {
		return m, err
	}
	if err := g.ApplyMove(player, m); err != nil {
		return m, err
	}
	return g.MoveLog[len(g.MoveLog)-1], nil
}
