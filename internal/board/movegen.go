package board

type offset struct{ dr, dc int }

var (
	knightOffsets = []offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = []offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalDirs  = []offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	straightDirs  = []offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	queenDirs     = append(append([]offset{}, straightDirs...), diagonalDirs...)
)

// PseudoLegalMoves lists the moves the piece on from may make by its movement
// pattern and blocking rules, without regard to whether the mover's king is
// left in check. ep is the current en passant target square, if any.
// Castling candidates are generated only when neither the king's square nor
// any square it crosses is attacked.
func PseudoLegalMoves(b *Board, from Square, ep *Square) []Move {
	p, ok := b.At(from)
	if !ok {
		return nil
	}
	switch p.Kind {
	case Pawn:
		return pawnMoves(b, from, p, ep)
	case Knight:
		return leaperMoves(b, from, p, knightOffsets)
	case Bishop:
		return sliderMoves(b, from, p, diagonalDirs)
	case Rook:
		return sliderMoves(b, from, p, straightDirs)
	case Queen:
		return sliderMoves(b, from, p, queenDirs)
	case King:
		return append(leaperMoves(b, from, p, kingOffsets), castlingMoves(b, from, p)...)
	}
	panic("board: move generation for invalid piece kind")
}

func sliderMoves(b *Board, from Square, p Piece, dirs []offset) []Move {
	var moves []Move
	for _, d := range dirs {
		to, ok := from.Offset(d.dr, d.dc)
		for ok {
			occupant, taken := b.At(to)
			if taken {
				if occupant.Color != p.Color {
					moves = append(moves, Move{Piece: p, From: from, To: to})
				}
				break
			}
			moves = append(moves, Move{Piece: p, From: from, To: to})
			to, ok = to.Offset(d.dr, d.dc)
		}
	}
	return moves
}

func leaperMoves(b *Board, from Square, p Piece, offsets []offset) []Move {
	var moves []Move
	for _, o := range offsets {
		to, ok := from.Offset(o.dr, o.dc)
		if !ok {
			continue
		}
		if occupant, taken := b.At(to); taken && occupant.Color == p.Color {
			continue
		}
		moves = append(moves, Move{Piece: p, From: from, To: to})
	}
	return moves
}

func pawnMoves(b *Board, from Square, p Piece, ep *Square) []Move {
	var moves []Move
	fwd := Forward(p.Color)

	if one, ok := from.Offset(fwd, 0); ok && b.Empty(one) {
		moves = appendPawnMove(moves, p, from, one)
		if !p.HasMoved && from.Rank == PawnRank(p.Color) {
			if two, ok := one.Offset(fwd, 0); ok && b.Empty(two) {
				moves = append(moves, Move{Piece: p, From: from, To: two})
			}
		}
	}

	for _, dc := range []int{-1, 1} {
		to, ok := from.Offset(fwd, dc)
		if !ok {
			continue
		}
		if occupant, taken := b.At(to); taken {
			if occupant.Color != p.Color {
				moves = appendPawnMove(moves, p, from, to)
			}
			continue
		}
		if ep != nil && *ep == to && enPassantVictim(b, from, to, p.Color) {
			moves = append(moves, Move{Piece: p, From: from, To: to})
		}
	}
	return moves
}

// enPassantVictim checks that an enemy pawn sits beside from on the target's file.
func enPassantVictim(b *Board, from, to Square, c Color) bool {
	victim, ok := b.At(Square{File: to.File, Rank: from.Rank})
	return ok && victim.Kind == Pawn && victim.Color != c
}

func appendPawnMove(moves []Move, p Piece, from, to Square) []Move {
	if to.Rank != PromotionRank(p.Color) {
		return append(moves, Move{Piece: p, From: from, To: to})
	}
	for _, k := range PromotionKinds {
		moves = append(moves, Move{Piece: p, From: from, To: to, Promotion: k})
	}
	return moves
}

func castlingMoves(b *Board, from Square, king Piece) []Move {
	home := Square{File: 'e', Rank: HomeRank(king.Color)}
	if king.HasMoved || from != home {
		return nil
	}
	enemy := king.Color.Opposite()
	if IsSquareAttacked(b, from, enemy) {
		return nil
	}

	var moves []Move
	sides := []struct {
		rookFile File
		between  []File
		transit  []File
		dest     File
	}{
		{rookFile: 'h', between: []File{'f', 'g'}, transit: []File{'f', 'g'}, dest: 'g'},
		{rookFile: 'a', between: []File{'b', 'c', 'd'}, transit: []File{'d', 'c'}, dest: 'c'},
	}
	for _, side := range sides {
		rook, ok := b.At(Square{File: side.rookFile, Rank: home.Rank})
		if !ok || rook.Kind != Rook || rook.Color != king.Color || rook.HasMoved {
			continue
		}
		if !filesEmpty(b, home.Rank, side.between) {
			continue
		}
		if filesAttacked(b, home.Rank, side.transit, enemy) {
			continue
		}
		moves = append(moves, Move{Piece: king, From: from, To: Square{File: side.dest, Rank: home.Rank}})
	}
	return moves
}

func filesEmpty(b *Board, r Rank, files []File) bool {
	for _, f := range files {
		if !b.Empty(Square{File: f, Rank: r}) {
			return false
		}
	}
	return true
}

func filesAttacked(b *Board, r Rank, files []File, by Color) bool {
	for _, f := range files {
		if IsSquareAttacked(b, Square{File: f, Rank: r}, by) {
			return true
		}
	}
	return false
}
