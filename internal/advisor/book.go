package advisor

import (
	"fmt"
	"os"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

// BookMove is a move found in an opening book.
type BookMove struct {
	Move   string
	Weight uint16
}

// Book answers from a Polyglot opening book before the engine is asked.
type Book struct {
	book *chesslib.PolyglotBook
}

func LoadBook(path string) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("polyglot book path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book %q: %w", path, err)
	}
	defer file.Close()

	book, err := chesslib.LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("load polyglot book %q: %w", path, err)
	}
	return &Book{book: book}, nil
}

// Lookup returns the heaviest book move for fen, or ok=false when the
// position is out of book. Book moves that are illegal in the position are
// reported as an error.
func (b *Book) Lookup(fen string) (BookMove, bool, error) {
	if b == nil || b.book == nil {
		return BookMove{}, false, nil
	}
	hash, err := chesslib.NewZobristHasher().HashPosition(fen)
	if err != nil {
		return BookMove{}, false, fmt.Errorf("compute polyglot hash: %w", err)
	}
	entries := b.book.FindMoves(chesslib.ZobristHashToUint64(hash))
	if len(entries) == 0 {
		return BookMove{}, false, nil
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.Weight > best.Weight {
			best = e
		}
	}
	mv := chesslib.DecodeMove(best.Move).ToMove()
	uci := mv.String()

	opt, err := chesslib.FEN(fen)
	if err != nil {
		return BookMove{}, false, fmt.Errorf("parse fen %q: %w", fen, err)
	}
	if err := chesslib.NewGame(opt).PushNotationMove(uci, chesslib.UCINotation{}, nil); err != nil {
		return BookMove{}, false, fmt.Errorf("book move %q invalid for position: %w", uci, err)
	}
	return BookMove{Move: uci, Weight: best.Weight}, true, nil
}
