package game

import (
	"strings"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

// encodeSAN renders m in Standard Algebraic Notation. before is the position
// m is played from, after the position it produces.
func encodeSAN(before *board.Board, m board.Move, ep *board.Square, after *board.Board) string {
	var sb strings.Builder
	switch {
	case m.IsCastle() && m.To.File == 'g':
		sb.WriteString("O-O")
	case m.IsCastle():
		sb.WriteString("O-O-O")
	default:
		capture := !before.Empty(m.To) || m.IsEnPassant()
		if m.Piece.Kind == board.Pawn {
			if capture {
				sb.WriteByte(byte(m.From.File))
			}
		} else {
			sb.WriteByte(m.Piece.Kind.Letter())
			sb.WriteString(disambiguate(before, m, ep))
		}
		if capture {
			sb.WriteByte('x')
		}
		sb.WriteString(m.To.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(m.PromotionKind().Letter())
		}
	}

	opponent := m.Piece.Color.Opposite()
	if board.IsInCheck(after, opponent) {
		nextEP, hasEP := m.EnPassantTarget()
		var epPtr *board.Square
		if hasEP {
			epPtr = &nextEP
		}
		if hasLegalMove(after, opponent, epPtr) {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}

// disambiguate returns the file, rank, or square needed to tell m apart from
// another legal move of the same piece kind to the same destination.
func disambiguate(b *board.Board, m board.Move, ep *board.Square) string {
	var rivals []board.Square
	for _, sq := range b.Squares(m.Piece.Color) {
		if sq == m.From {
			continue
		}
		p, _ := b.At(sq)
		if p.Kind != m.Piece.Kind {
			continue
		}
		for _, cand := range legalMovesFrom(b, sq, ep) {
			if cand.To == m.To {
				rivals = append(rivals, sq)
				break
			}
		}
	}
	if len(rivals) == 0 {
		return ""
	}
	sameFile, sameRank := false, false
	for _, sq := range rivals {
		if sq.File == m.From.File {
			sameFile = true
		}
		if sq.Rank == m.From.Rank {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(rune(m.From.File))
	case !sameRank:
		return string(rune('0' + m.From.Rank))
	default:
		return m.From.String()
	}
}
