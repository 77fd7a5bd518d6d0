package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

// Piece outlines on a 45x45 view box. Every shape sits on the same base so
// the lower fifth of a square is always covered by its piece.
const (
	baseShape = `<path d="M 11 38 L 34 38 L 32 32 L 13 32 Z"/>`

	pawnSVG = `<circle cx="22.5" cy="14" r="6"/>
<path d="M 12 38 L 33 38 L 29 24 L 16 24 Z"/>`

	rookSVG = `<path d="M 11 38 L 34 38 L 34 34 L 31 34 L 29 17 L 33 17 L 33 9 L 29 9 L 29 12 L 25 12 L 25 9 L 20 9 L 20 12 L 16 12 L 16 9 L 12 9 L 12 17 L 16 17 L 14 34 L 11 34 Z"/>`

	knightSVG = `<path d="M 12 38 L 34 38 L 32 20 C 31 12 25 8 18 8 L 17 12 L 11 18 L 12 23 L 17 22 L 20 20 L 14 30 Z"/>` + baseShape

	bishopSVG = `<circle cx="22.5" cy="8" r="3"/>
<path d="M 22.5 11 C 15 16 13 24 17 30 L 28 30 C 32 24 30 16 22.5 11 Z"/>` + baseShape

	queenSVG = `<path d="M 9 15 L 14 30 L 31 30 L 36 15 L 28 24 L 22.5 11 L 17 24 Z"/>
<circle cx="9" cy="13" r="2.5"/><circle cx="22.5" cy="9" r="2.5"/><circle cx="36" cy="13" r="2.5"/>` + baseShape

	kingSVG = `<path d="M 21 4 L 24 4 L 24 7 L 27 7 L 27 10 L 24 10 L 24 14 L 21 14 L 21 10 L 18 10 L 18 7 L 21 7 Z"/>
<path d="M 12 30 C 6 22 14 14 22.5 20 C 31 14 39 22 33 30 Z"/>` + baseShape
)

var pieceShapes = map[board.PieceKind]string{
	board.Pawn:   pawnSVG,
	board.Rook:   rookSVG,
	board.Knight: knightSVG,
	board.Bishop: bishopSVG,
	board.Queen:  queenSVG,
	board.King:   kingSVG,
}

type pieceCacheKey struct {
	piece board.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func pieceSVG(p board.Piece) (string, error) {
	shape, ok := pieceShapes[p.Kind]
	if !ok {
		return "", fmt.Errorf("no outline for piece kind %d", p.Kind)
	}
	fill, stroke := "#f8f8f8", "#1c1f2e"
	if p.Color == board.Black {
		fill, stroke = "#262626", "#f0f0f0"
	}
	var sb strings.Builder
	sb.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`)
	fmt.Fprintf(&sb, `<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">`, fill, stroke)
	sb.WriteString(shape)
	sb.WriteString(`</g></svg>`)
	return sb.String(), nil
}

func renderPieceImage(p board.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: p, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	src, err := pieceSVG(p)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()
	return img, nil
}
