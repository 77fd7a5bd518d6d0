// Package render draws board snapshots as PNG for chat-style clients.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/Cheese-chess-engine/internal/board"
	"github.com/park285/Cheese-chess-engine/internal/game"
)

const (
	squareSize       = 72
	boardSize        = squareSize * 8
	sideMargin       = 36
	topMargin        = 110
	bottomMargin     = 36
	titleHeight      = 40
	turnPanelHeight  = 32
	gapBetweenPanels = 14
	gapToBoard       = 22
	panelRadius      = 12
	panelPaddingX    = 20
	titleMinWidth    = 320
	scoreMinWidth    = 96
	turnMinWidth     = 140
	shadowOffsetY    = 6
)

type MoveHighlight struct {
	From board.Square
	To   board.Square
}

type Options struct {
	Highlight *MoveHighlight
	// Check marks the king in check.
	Check        *board.Square
	Header       string
	Turn         string
	MaterialDiff int
}

var (
	lightSquare             = color.RGBA{233, 207, 163, 255}
	darkSquare              = color.RGBA{187, 136, 96, 255}
	whiteMoveHighlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	checkFill               = color.NRGBA{R: 230, G: 60, B: 60, A: 150}
	hudPanelColor           = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor       = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor          = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary          = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor        = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextColor     = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

// ImageSize is the width and height of every rendered PNG.
func ImageSize() (int, int) {
	return boardSize + sideMargin*2, boardSize + topMargin + bottomMargin
}

// RenderPNG draws b with White at the bottom.
func RenderPNG(ctx context.Context, b *board.Board, opts Options) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("board is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := ImageSize()
	origin := image.Point{X: sideMargin, Y: topMargin}
	boardRect := image.Rect(origin.X, origin.Y, origin.X+boardSize, origin.Y+boardSize)
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	drawHUD(img, opts, boardRect)
	drawSquares(img, origin)
	if opts.Check != nil {
		drawSquareOverlay(img, *opts.Check, origin, checkFill)
	}
	if err := drawPieces(img, b, origin); err != nil {
		return nil, err
	}
	drawHighlight(img, b, opts.Highlight, origin)
	drawCoordinates(img, origin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderGame draws g's board with its last move, check and turn marked.
func RenderGame(ctx context.Context, g *game.GameState, header string, materialDiff int) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("game is nil")
	}
	opts := Options{Header: header, MaterialDiff: materialDiff}
	if last, ok := g.LastMove(); ok {
		opts.Highlight = &MoveHighlight{From: last.From, To: last.To}
	}
	side := g.SideToMove()
	switch g.Status {
	case game.Over:
		opts.Turn = "Game over"
	case game.WaitingToStart:
		opts.Turn = "Waiting for players"
	default:
		opts.Turn = strings.ToUpper(side.String()[:1]) + side.String()[1:] + " to move"
	}
	if g.Status != game.WaitingToStart && g.InCheck(side) {
		if k, ok := g.Board.KingSquare(side); ok {
			opts.Check = &k
		}
	}
	return RenderPNG(ctx, &g.Board, opts)
}

func squareRect(sq board.Square, origin image.Point) image.Rectangle {
	x := origin.X + sq.Col()*squareSize
	y := origin.Y + sq.Row()*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareColor(sq board.Square) color.Color {
	if (sq.Row()+sq.Col())%2 == 1 {
		return darkSquare
	}
	return lightSquare
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row := range 8 {
		for col := range 8 {
			sq := board.SquareAt(row, col)
			imagedraw.Draw(dst, squareRect(sq, origin), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, b *board.Board, origin image.Point) error {
	var firstErr error
	b.Each(func(sq board.Square, p board.Piece) {
		if firstErr != nil {
			return
		}
		img, err := renderPieceImage(p, squareSize)
		if err != nil {
			firstErr = err
			return
		}
		imagedraw.Draw(dst, squareRect(sq, origin), img, image.Point{}, imagedraw.Over)
	})
	return firstErr
}

// drawHighlight fills both squares for a White move and draws an arrow for
// a Black one.
func drawHighlight(img *image.RGBA, b *board.Board, h *MoveHighlight, origin image.Point) {
	if h == nil {
		return
	}
	mover, ok := b.At(h.To)
	if ok && mover.Color == board.Black {
		drawArrow(img, squareRect(h.From, origin), squareRect(h.To, origin), squareSize, blackMoveHighlightArrow)
		return
	}
	drawSquareOverlay(img, h.From, origin, whiteMoveHighlightFill)
	drawSquareOverlay(img, h.To, origin, whiteMoveHighlightFill)
}

func drawSquareOverlay(img *image.RGBA, sq board.Square, origin image.Point, clr color.Color) {
	imagedraw.Draw(img, squareRect(sq, origin), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawHUD(img *image.RGBA, opts Options, boardRect image.Rectangle) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.Header)
	if title == "" {
		title = "Chess"
	}
	turnText := strings.TrimSpace(opts.Turn)
	if turnText == "" {
		turnText = "Turn"
	}
	scoreText := "0"
	if opts.MaterialDiff != 0 {
		scoreText = fmt.Sprintf("%+d", opts.MaterialDiff)
	}

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - turnPanelHeight
	titleBottom := turnTop - gapBetweenPanels
	titleTop := titleBottom - titleHeight

	measure := func(s string, minW int) int {
		return max(drawer.MeasureString(s).Round()+panelPaddingX*2, minW)
	}
	scoreWidth := measure(scoreText, scoreMinWidth)
	titleWidth := min(measure(title, titleMinWidth), max(boardRect.Dx()-scoreWidth-24, titleMinWidth))
	turnWidth := min(measure(turnText, turnMinWidth), boardRect.Dx()-40)

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, turnTop, boardRect.Max.X, turnBottom)
	turnLeft := boardRect.Min.X + (boardRect.Dx()-turnWidth)/2
	turnRect := image.Rect(turnLeft, turnTop, turnLeft+turnWidth, turnBottom)

	for _, r := range []image.Rectangle{titleRect, scoreRect, turnRect} {
		drawRoundedPanel(img, r.Add(image.Pt(0, shadowOffsetY)), panelRadius, hudShadowColor)
	}
	drawRoundedPanel(img, titleRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, panelRadius, hudPanelColor)
	drawRoundedPanel(img, turnRect, panelRadius, hudTurnPanelColor)

	title = truncateWithEllipsis(face, title, titleRect.Dx()-panelPaddingX*2)
	turnText = truncateWithEllipsis(face, turnText, turnRect.Dx()-panelPaddingX*2)
	drawCenteredString(drawer, titleRect, title, hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)
	drawCenteredString(drawer, turnRect, turnText, hudTurnTextColor)
}

func drawCoordinates(dst imagedraw.Image, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + boardSize

	for i := range 8 {
		rank := board.RowToRank(i)
		rankBaseline := origin.Y + i*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, fmt.Sprint(int(rank)), origin.X-sideMargin/2, rankBaseline)

		file := board.ColumnToFile(i)
		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, string(rune(file)), fileCenter, boardEndY+ascent)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := max(rect.Min.X+(rect.Dx()-width)/2, rect.Min.X)
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if candidate := string(runes) + ellipsis; drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}
