package chesspresenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/Cheese-chess-engine/internal/msgcat"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

const (
	materialScoreNeutral = 39
	capturedRecentLimit  = 5
	recentMovesLimit     = 6
)

// Formatter renders DTOs as plain-text blocks for terminal and chat clients.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	if cat == nil {
		cat = msgcat.MustDefault()
	}
	return &Formatter{cat: cat}
}

// Status summarises a game: seats, whose turn, check, material and the
// latest moves. Finished games end with the outcome line.
func (f *Formatter) Status(v *chessdto.GameView) string {
	if v == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game %s [%s]\n", v.ID, v.Status)
	fmt.Fprintf(&sb, "• White: %s\n", orDash(v.White))
	fmt.Fprintf(&sb, "• Black: %s\n", orDash(v.Black))
	if v.Status == "in_progress" {
		if line, err := f.cat.Render("game.to_move", map[string]any{"Color": title(v.Turn)}); err == nil {
			sb.WriteString("• " + line + "\n")
		}
		if v.InCheck {
			if line, err := f.cat.Render("game.check", map[string]any{"Color": title(v.Turn)}); err == nil {
				sb.WriteString("• " + line + "\n")
			}
		}
		if v.DrawOffer != "" {
			if line, err := f.cat.Render("game.draw_offered", map[string]any{"Player": v.DrawOffer}); err == nil {
				sb.WriteString("• " + line + "\n")
			}
		}
	}
	if v.Opening != nil {
		fmt.Fprintf(&sb, "• Opening: %s %s\n", v.Opening.ECO, v.Opening.Name)
	}
	appendMaterialLine(&sb, v.Material)
	appendCapturedLine(&sb, v.Captured)
	fmt.Fprintf(&sb, "• Moves: %s\n", formatRecentMoves(v.MovesSAN))
	fmt.Fprintf(&sb, "• FEN: %s", v.FEN)
	if v.Status == "over" {
		if line := f.outcome(v.Result, v.Winner); line != "" {
			sb.WriteString("\n" + line)
		}
	}
	return sb.String()
}

func (f *Formatter) outcome(result, winner string) string {
	if result == "" {
		return ""
	}
	line, err := f.cat.Render("over."+result, map[string]any{"Winner": winner})
	if err != nil {
		return ""
	}
	return line
}

// Suggestion renders an engine hint.
func (f *Formatter) Suggestion(s *chessdto.Suggestion) string {
	if s == nil || strings.TrimSpace(s.Move) == "" {
		msg, _ := f.cat.Render("errors.advisor_unavailable", nil)
		return msg
	}
	msg, err := f.cat.Render("game.suggestion", map[string]any{"Move": s.Move})
	if err != nil {
		return s.Move
	}
	return msg
}

// History lists finished games, newest first.
func (f *Formatter) History(records []*chessdto.GameRecord) string {
	if len(records) == 0 {
		return "No finished games yet."
	}
	var sb strings.Builder
	sb.WriteString("Recent games\n")
	for i, r := range records {
		if r == nil {
			continue
		}
		fmt.Fprintf(&sb, "%d. %s vs %s: %s (%s, %d plies) %s\n",
			i+1, r.White, r.Black, formatResultBadge(r), r.Result, len(r.MovesUCI), formatShortTime(r.EndedAt))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Record shows one finished game with its PGN.
func (f *Formatter) Record(r *chessdto.GameRecord) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Game %s: %s vs %s\n", r.GameID, r.White, r.Black)
	fmt.Fprintf(&sb, "• Result: %s (%s)\n", formatResultBadge(r), r.Result)
	fmt.Fprintf(&sb, "• Ended: %s\n", formatShortTime(r.EndedAt))
	sb.WriteString(strings.TrimSpace(r.PGN))
	return sb.String()
}

// Stats renders a player's record.
func (f *Formatter) Stats(s *chessdto.PlayerStats) string {
	if s == nil {
		return ""
	}
	out := fmt.Sprintf("%s: %dW %dL %dD (%d games)", s.Player, s.Wins, s.Losses, s.Draws, s.GamesPlayed)
	if !s.LastPlayedAt.IsZero() {
		out += ", last played " + formatShortTime(s.LastPlayedAt)
	}
	return out
}

// Help lists the terminal commands.
func (f *Formatter) Help() string {
	return strings.Join([]string{
		"Commands",
		"  <move>            play a move, e.g. e2e4 or e7e8q",
		"  moves <square>    list legal moves for a piece",
		"  board [file.png]  print the board, or save it as PNG",
		"  fen               print the position as FEN",
		"  hint              ask the engine for a move",
		"  draw              offer a draw (or accept a pending one)",
		"  decline           decline a pending draw offer",
		"  resign            leave the game",
		"  new               start over",
		"  quit              exit",
	}, "\n")
}

func formatResultBadge(r *chessdto.GameRecord) string {
	switch {
	case r.Winner == "":
		return "draw"
	case r.Winner == r.White:
		return "1-0"
	default:
		return "0-1"
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func formatRecentMoves(moves []string) string {
	if len(moves) == 0 {
		return "-"
	}
	if len(moves) <= recentMovesLimit {
		return strings.Join(moves, " ")
	}
	return "… " + strings.Join(moves[len(moves)-recentMovesLimit:], " ")
}

func appendMaterialLine(sb *strings.Builder, material chessdto.MaterialScore) {
	sb.WriteString("• Material: ")
	sb.WriteString(formatMaterial(material))
	sb.WriteString("\n")
}

func appendCapturedLine(sb *strings.Builder, captured chessdto.CapturedPieces) {
	formatted := formatCaptured(captured)
	if formatted == "" {
		return
	}
	sb.WriteString("• Captured: ")
	sb.WriteString(formatted)
	sb.WriteString("\n")
}

func formatMaterial(score chessdto.MaterialScore) string {
	whiteCaptured := max(materialScoreNeutral-score.Black, 0)
	blackCaptured := max(materialScoreNeutral-score.White, 0)
	var parts []string
	if whiteCaptured > 0 {
		parts = append(parts, fmt.Sprintf("white +%d", whiteCaptured))
	}
	if blackCaptured > 0 {
		parts = append(parts, fmt.Sprintf("black +%d", blackCaptured))
	}
	if len(parts) == 0 {
		return "even"
	}
	return strings.Join(parts, " / ")
}

func formatCaptured(captured chessdto.CapturedPieces) string {
	white := formatCapturedSequence(firstPieces(captured.White, capturedRecentLimit))
	black := formatCapturedSequence(firstPieces(captured.Black, capturedRecentLimit))
	var parts []string
	if white != "" {
		parts = append(parts, "white "+white)
	}
	if black != "" {
		parts = append(parts, "black "+black)
	}
	return strings.Join(parts, " / ")
}

func formatCapturedSequence(order []string) string {
	tokens := make([]string, 0, len(order))
	for _, token := range order {
		if symbol := capturedSymbol(token); symbol != "" {
			tokens = append(tokens, symbol)
		}
	}
	return strings.Join(tokens, " ")
}

func capturedSymbol(piece string) string {
	switch strings.ToLower(strings.TrimSpace(piece)) {
	case "queen", "q":
		return "Q"
	case "rook", "r":
		return "R"
	case "bishop", "b":
		return "B"
	case "knight", "n":
		return "N"
	case "pawn", "p":
		return "P"
	}
	return ""
}

func firstPieces(order []string, limit int) []string {
	if len(order) > limit {
		return order[:limit]
	}
	return order
}
