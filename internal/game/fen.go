package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

// StartingFEN is the standard initial position.
const StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FEN serialises the position. It does not modify g.
func (g *GameState) FEN() string {
	var sb strings.Builder
	sb.WriteString(g.Board.Placement())
	if g.SideToMove() == board.White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(castlingRights(&g.Board))
	sb.WriteByte(' ')
	if ep := g.EnPassantTarget(); ep != nil {
		sb.WriteString(ep.String())
	} else {
		sb.WriteByte('-')
	}
	fmt.Fprintf(&sb, " %d %d", g.HalfMoveClock, g.FullMoveNumber())
	return sb.String()
}

// ToFEN is the free-function form of GameState.FEN.
func ToFEN(g *GameState) string { return g.FEN() }

func castlingRights(b *board.Board) string {
	var sb strings.Builder
	for _, c := range []board.Color{board.White, board.Black} {
		for _, rookFile := range []board.File{'h', 'a'} {
			if canStillCastle(b, c, rookFile) {
				letter := byte('K')
				if rookFile == 'a' {
					letter = 'Q'
				}
				if c == board.Black {
					letter += 'a' - 'A'
				}
				sb.WriteByte(letter)
			}
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func canStillCastle(b *board.Board, c board.Color, rookFile board.File) bool {
	home := board.HomeRank(c)
	king, ok := b.At(board.Square{File: 'e', Rank: home})
	if !ok || king.Kind != board.King || king.Color != c || king.HasMoved {
		return false
	}
	rook, ok := b.At(board.Square{File: rookFile, Rank: home})
	return ok && rook.Kind == board.Rook && rook.Color == c && !rook.HasMoved
}

// FromFEN builds a waiting game from a FEN record. Castling flags become
// HasMoved markers on the kings and rooks.
func FromFEN(fen string) (*GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid FEN: expected 6 fields, got %d", len(parts))
	}
	b, err := board.ParsePlacement(parts[0])
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}

	var blackToMove bool
	switch parts[1] {
	case "w":
	case "b":
		blackToMove = true
	default:
		return nil, fmt.Errorf("invalid FEN: side to move %q", parts[1])
	}

	if err := applyCastlingField(&b, parts[2]); err != nil {
		return nil, err
	}

	var ep *board.Square
	if parts[3] != "-" {
		sq, err := board.ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid FEN: en passant: %w", err)
		}
		ep = &sq
	}

	half, err := strconv.Atoi(parts[4])
	if err != nil || half < 0 {
		return nil, fmt.Errorf("invalid FEN: halfmove clock %q", parts[4])
	}
	full, err := strconv.Atoi(parts[5])
	if err != nil || full < 1 {
		return nil, fmt.Errorf("invalid FEN: fullmove number %q", parts[5])
	}

	g := New()
	g.Board = b
	g.HalfMoveClock = half
	g.PlyOffset = (full - 1) * 2
	if blackToMove {
		g.PlyOffset++
	}
	g.ImportedEnPassant = ep
	if fen := strings.Join(parts, " "); fen != StartingFEN {
		g.StartFEN = fen
	}
	return g, nil
}

func applyCastlingField(b *board.Board, field string) error {
	rights := map[byte]bool{}
	if field != "-" {
		for i := 0; i < len(field); i++ {
			switch ch := field[i]; ch {
			case 'K', 'Q', 'k', 'q':
				rights[ch] = true
			default:
				return fmt.Errorf("invalid FEN: castling flag %q", ch)
			}
		}
	}
	mark := func(sq board.Square, kind board.PieceKind, c board.Color) {
		if p, ok := b.At(sq); ok && p.Kind == kind && p.Color == c {
			p.HasMoved = true
			b.Set(sq, p)
		}
	}
	for _, side := range []struct {
		color      board.Color
		king, long byte
	}{{board.White, 'K', 'Q'}, {board.Black, 'k', 'q'}} {
		home := board.HomeRank(side.color)
		if !rights[side.king] {
			mark(board.Square{File: 'h', Rank: home}, board.Rook, side.color)
		}
		if !rights[side.long] {
			mark(board.Square{File: 'a', Rank: home}, board.Rook, side.color)
		}
		if !rights[side.king] && !rights[side.long] {
			mark(board.Square{File: 'e', Rank: home}, board.King, side.color)
		}
	}
	return nil
}
