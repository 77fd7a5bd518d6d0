package game

import (
	"github.com/park285/Cheese-chess-engine/internal/board"
)

// ApplyMove validates m for player and, on success, plays it: the board,
// move log, half-move clock, and status are updated together. Validation
// order is game status, turn, square bounds, piece ownership, move shape,
// then the self-check rule. On any rejection the state is unchanged.
func (g *GameState) ApplyMove(player PlayerID, m board.Move) error {
	if g.Status != InProgress {
		return moveErr(player, m, ErrGameNotInProgress)
	}
	mover := g.SideToMove()
	color, seated := g.ColorOf(player)
	if !seated {
		return moveErr(player, m, ErrPlayerNotInGame)
	}
	if color != mover {
		return moveErr(player, m, ErrNotYourTurn)
	}
	if !m.From.Valid() || !m.To.Valid() {
		return moveErr(player, m, ErrIllegalShape)
	}

	piece, ok := g.Board.At(m.From)
	if !ok || piece.Color != mover || !piece.Same(m.Piece) {
		return moveErr(player, m, ErrNoSuchPiece)
	}

	ep := g.EnPassantTarget()
	played, ok := matchPseudoLegal(&g.Board, m, ep)
	if !ok {
		return moveErr(player, m, ErrIllegalShape)
	}

	next := g.Board
	_, captured := next.Apply(played)
	if board.IsInCheck(&next, mover) {
		return moveErr(player, m, ErrMovesIntoCheck)
	}

	san := encodeSAN(&g.Board, played, ep, &next)

	g.Board = next
	g.MoveLog = append(g.MoveLog, played)
	g.SAN = append(g.SAN, san)
	if captured || played.Piece.Kind == board.Pawn {
		g.HalfMoveClock = 0
	} else {
		g.HalfMoveClock++
	}
	// playing on declines an offer the opponent made
	if g.DrawOffer != "" && g.DrawOffer != player {
		g.DrawOffer = ""
	}
	g.ImportedEnPassant = nil
	g.deriveOutcome(player)
	return nil
}

// matchPseudoLegal finds the generated move equal to m, which also fills in
// the default promotion.
func matchPseudoLegal(b *board.Board, m board.Move, ep *board.Square) (board.Move, bool) {
	if m.Promotion != 0 && !m.IsPromotion() {
		return board.Move{}, false
	}
	for _, cand := range board.PseudoLegalMoves(b, m.From, ep) {
		if cand.Matches(m) {
			return cand, true
		}
	}
	return board.Move{}, false
}

// deriveOutcome settles checkmate and stalemate for the side now to move.
func (g *GameState) deriveOutcome(mover PlayerID) {
	side := g.SideToMove()
	if hasLegalMove(&g.Board, side, g.EnPassantTarget()) {
		return
	}
	g.Status = Over
	g.DrawOffer = ""
	if board.IsInCheck(&g.Board, side) {
		g.Winner = mover
		g.Result = ResultCheckmate
		return
	}
	g.Winner = ""
	g.Result = ResultStalemate
}

// legalMovesFrom filters the pseudo-legal moves on from by simulating each on
// a copy of the board.
func legalMovesFrom(b *board.Board, from board.Square, ep *board.Square) []board.Move {
	p, ok := b.At(from)
	if !ok {
		return nil
	}
	var out []board.Move
	for _, m := range board.PseudoLegalMoves(b, from, ep) {
		scratch := *b
		scratch.Apply(m)
		if !board.IsInCheck(&scratch, p.Color) {
			out = append(out, m)
		}
	}
	return out
}

func hasLegalMove(b *board.Board, c board.Color, ep *board.Square) bool {
	for _, sq := range b.Squares(c) {
		if len(legalMovesFrom(b, sq, ep)) > 0 {
			return true
		}
	}
	return false
}

// LegalMoves lists the fully legal moves of the piece on sq for the side to
// move. Pieces of the side not on move have none.
func (g *GameState) LegalMoves(sq board.Square) []board.Move {
	p, ok := g.Board.At(sq)
	if !ok || p.Color != g.SideToMove() {
		return nil
	}
	return legalMovesFrom(&g.Board, sq, g.EnPassantTarget())
}

// AllLegalMoves lists every legal move for the side to move.
func (g *GameState) AllLegalMoves() []board.Move {
	var out []board.Move
	ep := g.EnPassantTarget()
	for _, sq := range g.Board.Squares(g.SideToMove()) {
		out = append(out, legalMovesFrom(&g.Board, sq, ep)...)
	}
	return out
}

// PseudoLegalMoves exposes move generation for the piece on sq in the current
// position, without the self-check filter.
func (g *GameState) PseudoLegalMoves(sq board.Square) []board.Move {
	return board.PseudoLegalMoves(&g.Board, sq, g.EnPassantTarget())
}
