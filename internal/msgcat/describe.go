package msgcat

import (
	"errors"

	"github.com/park285/Cheese-chess-engine/internal/game"
)

var errorKeys = []struct {
	err error
	key string
}{
	{game.ErrNotYourTurn, "errors.not_your_turn"},
	{game.ErrNoSuchPiece, "errors.no_such_piece"},
	{game.ErrIllegalShape, "errors.illegal_shape"},
	{game.ErrMovesIntoCheck, "errors.moves_into_check"},
	{game.ErrInvalidMoveRequest, "errors.invalid_move"},
	{game.ErrAlreadyInGame, "errors.already_in_game"},
	{game.ErrGameFull, "errors.game_full"},
	{game.ErrPlayerNotInGame, "errors.not_in_game"},
	{game.ErrGameNotInProgress, "errors.not_in_progress"},
	{game.ErrNoDrawOffer, "errors.no_draw_offer"},
	{game.ErrInvalidPlayer, "errors.invalid_player"},
}

// ErrorKey returns the catalog key for a rules rejection, or "" when err is
// not one.
func ErrorKey(err error) string {
	for _, e := range errorKeys {
		if errors.Is(err, e.err) {
			return e.key
		}
	}
	return ""
}

// Describe renders a user-facing message for err. Fields from a MoveError or
// SeatError are filled in; extra adds or overrides template fields. Errors
// without a catalog entry, or whose template fails, fall back to
// errors.internal.
func (c *Catalog) Describe(err error, extra map[string]any) string {
	key := ErrorKey(err)
	if key == "" {
		key = "errors.internal"
	}
	data := map[string]any{"Player": "", "Move": "", "From": "", "To": "", "Op": ""}
	var me *game.MoveError
	if errors.As(err, &me) {
		data["Player"] = string(me.Player)
		data["Move"] = me.Move.UCI()
		data["From"] = me.Move.From.String()
		data["To"] = me.Move.To.String()
	}
	var se *game.SeatError
	if errors.As(err, &se) {
		data["Player"] = string(se.Player)
		data["Op"] = se.Op
	}
	for k, v := range extra {
		data[k] = v
	}
	msg, rerr := c.Render(key, data)
	if rerr != nil {
		msg, _ = c.Render("errors.internal", data)
	}
	return msg
}

// Outcome renders the closing line for a finished game, or "" while it is
// still running.
func (c *Catalog) Outcome(g *game.GameState) string {
	if g.Status != game.Over {
		return ""
	}
	msg, err := c.Render("over."+string(g.Result), map[string]any{"Winner": string(g.Winner)})
	if err != nil {
		return ""
	}
	return msg
}
