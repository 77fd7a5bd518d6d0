package board

import (
	"fmt"
	"strings"
)

// Placement encodes the piece-placement field of a FEN record.
func (b *Board) Placement() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			p, ok := b.atGrid(row, col)
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.FENLetter())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// ParsePlacement decodes a FEN piece-placement field. Pawns off their starting
// rank are marked as moved; every other piece is treated as unmoved.
func ParsePlacement(field string) (Board, error) {
	var b Board
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return Board{}, fmt.Errorf("invalid FEN placement: expected 8 ranks, got %d", len(ranks))
	}
	for row, text := range ranks {
		col := 0
		for i := 0; i < len(text); i++ {
			ch := text[i]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			if col >= 8 {
				return Board{}, fmt.Errorf("invalid FEN placement: too many squares in rank %d", RowToRank(row))
			}
			p, ok := PieceFromFEN(ch)
			if !ok {
				return Board{}, fmt.Errorf("invalid FEN placement: unknown piece %q", ch)
			}
			sq := SquareAt(row, col)
			if p.Kind == Pawn && sq.Rank != PawnRank(p.Color) {
				p.HasMoved = true
			}
			b.Set(sq, p)
			col++
		}
		if col != 8 {
			return Board{}, fmt.Errorf("invalid FEN placement: rank %d has %d files", RowToRank(row), col)
		}
	}
	return b, nil
}
