package board

import (
	"fmt"
	"strings"
)

// File is a board file, 'a' through 'h'.
type File byte

// Rank is a board rank, 1 through 8.
type Rank int8

const (
	FileA File = 'a'
	FileH File = 'h'
)

// Square names one cell of the board in chess notation.
type Square struct {
	File File
	Rank Rank
}

// FileToColumn maps a..h to 0..7.
func FileToColumn(f File) int { return int(f - FileA) }

// ColumnToFile is the inverse of FileToColumn.
func ColumnToFile(col int) File { return FileA + File(col) }

// RankToRow maps rank 8 to row 0 and rank 1 to row 7; White sits at the bottom.
func RankToRow(r Rank) int { return 8 - int(r) }

// RowToRank is the inverse of RankToRow.
func RowToRank(row int) Rank { return Rank(8 - row) }

// SquareAt returns the square at the given zero-based row/column.
func SquareAt(row, col int) Square {
	return Square{File: ColumnToFile(col), Rank: RowToRank(row)}
}

// Row returns the zero-based grid row of s.
func (s Square) Row() int { return RankToRow(s.Rank) }

// Col returns the zero-based grid column of s.
func (s Square) Col() int { return FileToColumn(s.File) }

// Valid reports whether s lies on the board.
func (s Square) Valid() bool {
	return s.File >= FileA && s.File <= FileH && s.Rank >= 1 && s.Rank <= 8
}

// Offset returns the square dr rows and dc columns away, and whether it is on the board.
func (s Square) Offset(dr, dc int) (Square, bool) {
	row, col := s.Row()+dr, s.Col()+dc
	if !onGrid(row, col) {
		return Square{}, false
	}
	return SquareAt(row, col), true
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", s.File, s.Rank)
}

// ParseSquare reads algebraic coordinates such as "e4".
func ParseSquare(raw string) (Square, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if len(v) != 2 {
		return Square{}, fmt.Errorf("invalid square %q", raw)
	}
	sq := Square{File: File(v[0]), Rank: Rank(v[1] - '0')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("invalid square %q", raw)
	}
	return sq, nil
}

// MustSquare is ParseSquare for literals known to be valid.
func MustSquare(raw string) Square {
	sq, err := ParseSquare(raw)
	if err != nil {
		panic(err)
	}
	return sq
}

func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid square %d/%d", s.File, s.Rank)
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(b []byte) error {
	sq, err := ParseSquare(string(b))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

// Forward is the row delta a pawn of color c advances by.
func Forward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// HomeRank is the rank a color's back-row pieces start on.
func HomeRank(c Color) Rank {
	if c == White {
		return 1
	}
	return 8
}

// PawnRank is the rank a color's pawns start on.
func PawnRank(c Color) Rank {
	if c == White {
		return 2
	}
	return 7
}

// PromotionRank is the last rank for a color's pawns.
func PromotionRank(c Color) Rank {
	return HomeRank(c.Opposite())
}

func onGrid(row, col int) bool {
	return row >= 0 && row < 8 && col >= 0 && col < 8
}
