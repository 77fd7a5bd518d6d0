package board

import "fmt"

// IsSquareAttacked reports whether any piece of color by could capture on sq.
// Rays and offsets are cast outward from sq itself.
func IsSquareAttacked(b *Board, sq Square, by Color) bool {
	return pawnAttacks(b, sq, by) ||
		leaperAttacks(b, sq, by, knightOffsets, Knight) ||
		leaperAttacks(b, sq, by, kingOffsets, King) ||
		rayAttacks(b, sq, by, diagonalDirs, Bishop) ||
		rayAttacks(b, sq, by, straightDirs, Rook)
}

// IsInCheck reports whether c's king is attacked. A board without that king
// violates the engine's invariants and panics.
func IsInCheck(b *Board, c Color) bool {
	king, ok := b.KingSquare(c)
	if !ok {
		panic(fmt.Sprintf("board: no %s king on board", c))
	}
	return IsSquareAttacked(b, king, c.Opposite())
}

func pawnAttacks(b *Board, sq Square, by Color) bool {
	// an attacking pawn stands one step behind sq from its own point of view
	back := -Forward(by)
	for _, dc := range []int{-1, 1} {
		from, ok := sq.Offset(back, dc)
		if !ok {
			continue
		}
		if p, ok := b.At(from); ok && p.Kind == Pawn && p.Color == by {
			return true
		}
	}
	return false
}

func leaperAttacks(b *Board, sq Square, by Color, offsets []offset, kind PieceKind) bool {
	row, col := sq.Row(), sq.Col()
	for _, o := range offsets {
		r, c := row+o.dr, col+o.dc
		if !onGrid(r, c) {
			continue
		}
		if p, ok := b.atGrid(r, c); ok && p.Kind == kind && p.Color == by {
			return true
		}
	}
	return false
}

// rayAttacks walks each direction to the first occupied square; slider is
// the piece moving along these rays besides the queen.
func rayAttacks(b *Board, sq Square, by Color, dirs []offset, slider PieceKind) bool {
	row, col := sq.Row(), sq.Col()
	for _, d := range dirs {
		r, c := row+d.dr, col+d.dc
		for onGrid(r, c) {
			if p, ok := b.atGrid(r, c); ok {
				if p.Color == by && (p.Kind == slider || p.Kind == Queen) {
					return true
				}
				break
			}
			r, c = r+d.dr, c+d.dc
		}
	}
	return false
}
