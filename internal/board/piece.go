package board

import (
	"fmt"
	"strings"
	"unicode"
)

// Color identifies a side.
type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "white", "w":
		*c = White
	case "black", "b":
		*c = Black
	default:
		return fmt.Errorf("invalid color %q", string(b))
	}
	return nil
}

// PieceKind is the closed set of chess pieces. The zero value is not a piece.
type PieceKind uint8

const (
	King PieceKind = iota + 1
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// Kinds lists every piece kind.
var Kinds = [...]PieceKind{King, Queen, Rook, Bishop, Knight, Pawn}

// PromotionKinds lists what a pawn may become, preferred first.
var PromotionKinds = [...]PieceKind{Queen, Rook, Bishop, Knight}

// Valid reports whether k is one of the six piece kinds.
func (k PieceKind) Valid() bool { return k >= King && k <= Pawn }

// Letter returns the uppercase SAN/FEN letter for k.
func (k PieceKind) Letter() byte {
	switch k {
	case King:
		return 'K'
	case Queen:
		return 'Q'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Knight:
		return 'N'
	case Pawn:
		return 'P'
	}
	panic(fmt.Sprintf("board: invalid piece kind %d", k))
}

func (k PieceKind) String() string {
	switch k {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	}
	return "none"
}

// ParsePieceKind accepts a FEN letter in either case or an English piece name.
func ParsePieceKind(raw string) (PieceKind, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "k", "king":
		return King, nil
	case "q", "queen":
		return Queen, nil
	case "r", "rook":
		return Rook, nil
	case "b", "bishop":
		return Bishop, nil
	case "n", "knight":
		return Knight, nil
	case "p", "pawn":
		return Pawn, nil
	}
	return 0, fmt.Errorf("invalid piece kind %q", raw)
}

func (k PieceKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid piece kind %d", k)
	}
	return []byte(k.String()), nil
}

func (k *PieceKind) UnmarshalText(b []byte) error {
	v, err := ParsePieceKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Piece is an occupant of a square. HasMoved is set the first time the piece is relocated.
type Piece struct {
	Kind     PieceKind `json:"kind"`
	Color    Color     `json:"color"`
	HasMoved bool      `json:"hasMoved,omitempty"`
}

// FENLetter is uppercase for White and lowercase for Black.
func (p Piece) FENLetter() byte {
	l := p.Kind.Letter()
	if p.Color == Black {
		return byte(unicode.ToLower(rune(l)))
	}
	return l
}

// PieceFromFEN decodes a single FEN piece letter.
func PieceFromFEN(ch byte) (Piece, bool) {
	kind, err := ParsePieceKind(string(ch))
	if err != nil {
		return Piece{}, false
	}
	color := White
	if unicode.IsLower(rune(ch)) {
		color = Black
	}
	return Piece{Kind: kind, Color: color}, true
}

// Same reports whether p and o are the same kind and color, ignoring HasMoved.
func (p Piece) Same(o Piece) bool { return p.Kind == o.Kind && p.Color == o.Color }
