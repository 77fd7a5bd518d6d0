package board

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Board is an 8x8 grid of optional pieces. It has value semantics: assigning a
// Board copies every cell, so a copy can be mutated to simulate a move.
type Board struct {
	cells [8][8]cell
}

type cell struct {
	piece    Piece
	occupied bool
}

var backRow = [8]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Standard returns the initial chess position.
func Standard() Board {
	var b Board
	for col := 0; col < 8; col++ {
		f := ColumnToFile(col)
		b.Set(Square{f, 1}, Piece{Kind: backRow[col], Color: White})
		b.Set(Square{f, 2}, Piece{Kind: Pawn, Color: White})
		b.Set(Square{f, 7}, Piece{Kind: Pawn, Color: Black})
		b.Set(Square{f, 8}, Piece{Kind: backRow[col], Color: Black})
	}
	return b
}

// At returns the piece on sq, if any.
func (b *Board) At(sq Square) (Piece, bool) {
	c := b.cells[sq.Row()][sq.Col()]
	return c.piece, c.occupied
}

func (b *Board) atGrid(row, col int) (Piece, bool) {
	c := b.cells[row][col]
	return c.piece, c.occupied
}

// Set places p on sq, replacing any occupant.
func (b *Board) Set(sq Square, p Piece) {
	if !p.Kind.Valid() {
		panic(fmt.Sprintf("board: set %s with invalid piece kind %d", sq, p.Kind))
	}
	b.cells[sq.Row()][sq.Col()] = cell{piece: p, occupied: true}
}

// Clear empties sq.
func (b *Board) Clear(sq Square) {
	b.cells[sq.Row()][sq.Col()] = cell{}
}

// Empty reports whether sq has no occupant.
func (b *Board) Empty(sq Square) bool {
	return !b.cells[sq.Row()][sq.Col()].occupied
}

// Each calls fn for every occupied square, rank 8 to rank 1, file a to h.
func (b *Board) Each(fn func(sq Square, p Piece)) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if c := b.cells[row][col]; c.occupied {
				fn(SquareAt(row, col), c.piece)
			}
		}
	}
}

// Squares returns the squares holding pieces of color c.
func (b *Board) Squares(c Color) []Square {
	var out []Square
	b.Each(func(sq Square, p Piece) {
		if p.Color == c {
			out = append(out, sq)
		}
	})
	return out
}

// KingSquare locates the king of color c.
func (b *Board) KingSquare(c Color) (Square, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if p, ok := b.atGrid(row, col); ok && p.Kind == King && p.Color == c {
				return SquareAt(row, col), true
			}
		}
	}
	return Square{}, false
}

// Validate checks the structural invariants of a playable position:
// exactly one king per color and no pawns on the first or last rank.
func (b *Board) Validate() error {
	kings := map[Color]int{}
	var err error
	b.Each(func(sq Square, p Piece) {
		if p.Kind == King {
			kings[p.Color]++
		}
		if p.Kind == Pawn && (sq.Rank == 1 || sq.Rank == 8) && err == nil {
			err = fmt.Errorf("pawn on back rank at %s", sq)
		}
	})
	if err != nil {
		return err
	}
	for _, c := range []Color{White, Black} {
		if kings[c] != 1 {
			return fmt.Errorf("%s has %d kings, want 1", c, kings[c])
		}
	}
	return nil
}

// Capture describes a piece removed by Apply.
type Capture struct {
	Piece  Piece
	Square Square
}

// Apply mutates b by playing m, which must already be known to be pseudo-legal.
// It handles en passant, castling rook relocation, and promotion, and reports
// the captured piece, if any.
func (b *Board) Apply(m Move) (Capture, bool) {
	moving, ok := b.At(m.From)
	if !ok {
		panic(fmt.Sprintf("board: apply %s with empty origin", m.UCI()))
	}

	var (
		captured Capture
		took     bool
	)
	if victim, ok := b.At(m.To); ok {
		captured, took = Capture{Piece: victim, Square: m.To}, true
	} else if m.IsEnPassant() {
		passed := Square{File: m.To.File, Rank: m.From.Rank}
		if victim, ok := b.At(passed); ok {
			captured, took = Capture{Piece: victim, Square: passed}, true
			b.Clear(passed)
		}
	}

	b.Clear(m.From)
	moving.HasMoved = true
	if moving.Kind == Pawn && m.To.Rank == PromotionRank(moving.Color) {
		moving.Kind = m.PromotionKind()
	}
	b.Set(m.To, moving)

	if rookFrom, rookTo, ok := m.CastlingRook(); ok {
		if rook, ok := b.At(rookFrom); ok {
			b.Clear(rookFrom)
			rook.HasMoved = true
			b.Set(rookTo, rook)
		}
	}
	return captured, took
}

// String draws the board as text, rank 8 first.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		fmt.Fprintf(&sb, "%d ", RowToRank(row))
		for col := 0; col < 8; col++ {
			if p, ok := b.atGrid(row, col); ok {
				sb.WriteByte(p.FENLetter())
			} else {
				sb.WriteByte('.')
			}
			if col < 7 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h")
	return sb.String()
}

func (b Board) MarshalJSON() ([]byte, error) {
	out := make(map[Square]Piece, 32)
	b.Each(func(sq Square, p Piece) { out[sq] = p })
	return json.Marshal(out)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var in map[Square]Piece
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var nb Board
	for sq, p := range in {
		if !p.Kind.Valid() {
			return fmt.Errorf("invalid piece on %s", sq)
		}
		nb.Set(sq, p)
	}
	*b = nb
	return nil
}

// Move is a proposed or played relocation. It is a value; Board.Apply performs it.
type Move struct {
	Piece     Piece     `json:"piece"`
	From      Square    `json:"from"`
	To        Square    `json:"to"`
	Promotion PieceKind `json:"promotion,omitempty"`
}

// UCI renders the move in long algebraic coordinates, e.g. "e7e8q".
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promotion.Valid() {
		s += strings.ToLower(string(m.Promotion.Letter()))
	}
	return s
}

func (m Move) String() string { return m.UCI() }

// IsPromotion reports whether m takes a pawn to its last rank.
func (m Move) IsPromotion() bool {
	return m.Piece.Kind == Pawn && m.To.Rank == PromotionRank(m.Piece.Color)
}

// PromotionKind is the piece a promoting pawn becomes; Queen unless chosen otherwise.
func (m Move) PromotionKind() PieceKind {
	if m.Promotion.Valid() {
		return m.Promotion
	}
	return Queen
}

// IsEnPassant reports whether m is a diagonal pawn step; callers pair it with an
// empty destination to identify an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Piece.Kind == Pawn && m.From.File != m.To.File
}

// IsDoubleStep reports a two-rank pawn advance.
func (m Move) IsDoubleStep() bool {
	d := int(m.To.Rank) - int(m.From.Rank)
	return m.Piece.Kind == Pawn && (d == 2 || d == -2)
}

// IsCastle reports a two-file king move.
func (m Move) IsCastle() bool {
	d := FileToColumn(m.To.File) - FileToColumn(m.From.File)
	return m.Piece.Kind == King && (d == 2 || d == -2)
}

// CastlingRook returns where the rook travels for a castling move.
func (m Move) CastlingRook() (from, to Square, ok bool) {
	if !m.IsCastle() {
		return Square{}, Square{}, false
	}
	r := m.From.Rank
	if m.To.File > m.From.File {
		return Square{'h', r}, Square{'f', r}, true
	}
	return Square{'a', r}, Square{'d', r}, true
}

// EnPassantTarget is the square behind a pawn that just double-stepped.
func (m Move) EnPassantTarget() (Square, bool) {
	if !m.IsDoubleStep() {
		return Square{}, false
	}
	mid := (int(m.From.Rank) + int(m.To.Rank)) / 2
	return Square{File: m.From.File, Rank: Rank(mid)}, true
}

// Matches compares the identity of two moves: piece kind and color, squares,
// and effective promotion. HasMoved does not participate.
func (m Move) Matches(o Move) bool {
	if !m.Piece.Same(o.Piece) || m.From != o.From || m.To != o.To {
		return false
	}
	if m.IsPromotion() {
		return m.PromotionKind() == o.PromotionKind()
	}
	return true
}
