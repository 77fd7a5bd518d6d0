package chesspresenter

import (
	"time"

	"github.com/park285/Cheese-chess-engine/internal/advisor"
	"github.com/park285/Cheese-chess-engine/internal/board"
	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

var pieceValues = map[board.PieceKind]int{
	board.Pawn:   1,
	board.Knight: 3,
	board.Bishop: 3,
	board.Rook:   5,
	board.Queen:  9,
}

// captureOrder lists kinds most valuable first for the captured strip.
var captureOrder = []board.PieceKind{board.Queen, board.Rook, board.Bishop, board.Knight, board.Pawn}

var startingCounts = map[board.PieceKind]int{
	board.Pawn:   8,
	board.Knight: 2,
	board.Bishop: 2,
	board.Rook:   2,
	board.Queen:  1,
}

// ToGameView snapshots g for clients.
func ToGameView(id string, g *game.GameState, updatedAt time.Time) *chessdto.GameView {
	if g == nil {
		return nil
	}
	turn := g.SideToMove()
	view := &chessdto.GameView{
		ID:        id,
		Status:    g.Status.String(),
		White:     string(g.White),
		Black:     string(g.Black),
		Turn:      turn.String(),
		InCheck:   g.InCheck(turn),
		Winner:    string(g.Winner),
		Result:    string(g.Result),
		DrawOffer: string(g.DrawOffer),
		FEN:       g.FEN(),
		MovesUCI:  g.MovesUCI(),
		MovesSAN:  append([]string{}, g.SAN...),
		UpdatedAt: updatedAt,
	}
	g.Board.Each(func(sq board.Square, p board.Piece) {
		view.Pieces = append(view.Pieces, chessdto.PieceView{
			Square: sq.String(),
			Kind:   p.Kind.String(),
			Color:  p.Color.String(),
		})
	})
	view.Material, view.Captured = Material(&g.Board)
	if g.StartFEN == "" {
		if o, ok := advisor.NameOpening(view.MovesUCI); ok {
			view.Opening = &chessdto.Opening{ECO: o.ECO, Name: o.Name}
		}
	}
	return view
}

// Material totals piece values per side and derives captured pieces from
// what is missing against the standard set. Promoted pieces make the
// derivation approximate, as in any count-based scheme.
func Material(b *board.Board) (chessdto.MaterialScore, chessdto.CapturedPieces) {
	counts := map[board.Color]map[board.PieceKind]int{
		board.White: {},
		board.Black: {},
	}
	var score chessdto.MaterialScore
	b.Each(func(_ board.Square, p board.Piece) {
		counts[p.Color][p.Kind]++
		v := pieceValues[p.Kind]
		if p.Color == board.White {
			score.White += v
		} else {
			score.Black += v
		}
	})

	captured := chessdto.CapturedPieces{White: []string{}, Black: []string{}}
	for _, kind := range captureOrder {
		for n := startingCounts[kind] - counts[board.Black][kind]; n > 0; n-- {
			captured.White = append(captured.White, kind.String())
		}
		for n := startingCounts[kind] - counts[board.White][kind]; n > 0; n-- {
			captured.Black = append(captured.Black, kind.String())
		}
	}
	return score, captured
}

// ToLegalMoves lists the legal destinations of the piece on sq in
// coordinate notation.
func ToLegalMoves(g *game.GameState, sq board.Square) *chessdto.LegalMovesView {
	moves := g.LegalMoves(sq)
	out := &chessdto.LegalMovesView{Square: sq.String(), Moves: make([]string, 0, len(moves))}
	for _, m := range moves {
		out.Moves = append(out.Moves, m.UCI())
	}
	return out
}

// ToSuggestion wraps an engine hint.
func ToSuggestion(id string, req game.MoveRequest, took time.Duration) *chessdto.Suggestion {
	s := &chessdto.Suggestion{
		GameID:     id,
		Move:       req.String(),
		From:       req.From.String(),
		To:         req.To.String(),
		DurationMS: took.Milliseconds(),
	}
	if req.Promotion.Valid() {
		s.Promotion = req.Promotion.String()
	}
	return s
}
