package game

import (
	"strings"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

// Join seats player in the first empty seat, White first. Filling the second
// seat starts the game.
func (g *GameState) Join(player PlayerID) error {
	if strings.TrimSpace(string(player)) == "" {
		return seatErr("join", player, ErrInvalidPlayer)
	}
	if _, seated := g.ColorOf(player); seated {
		return seatErr("join", player, ErrAlreadyInGame)
	}
	switch {
	case g.White == "":
		g.White = player
	case g.Black == "":
		g.Black = player
	default:
		return seatErr("join", player, ErrGameFull)
	}
	if g.White != "" && g.Black != "" && g.Status == WaitingToStart {
		g.Status = InProgress
	}
	return nil
}

// Leave removes player. Leaving a game in progress concedes it to the
// remaining player; leaving before it starts frees the seat. Leaving a
// finished game changes nothing.
func (g *GameState) Leave(player PlayerID) error {
	color, seated := g.ColorOf(player)
	if !seated {
		return seatErr("leave", player, ErrPlayerNotInGame)
	}
	switch g.Status {
	case InProgress:
		g.Status = Over
		g.Winner = g.Seat(color.Opposite())
		g.Result = ResultResignation
		g.DrawOffer = ""
	case WaitingToStart:
		if color == board.White {
			g.White = ""
		} else {
			g.Black = ""
		}
	}
	return nil
}

// OfferDraw records a draw offer from player. An offer made while the
// opponent's own offer is pending is an agreement.
func (g *GameState) OfferDraw(player PlayerID) error {
	if g.Status != InProgress {
		return seatErr("offer_draw", player, ErrGameNotInProgress)
	}
	if _, seated := g.ColorOf(player); !seated {
		return seatErr("offer_draw", player, ErrPlayerNotInGame)
	}
	if g.DrawOffer != "" && g.DrawOffer != player {
		g.agreeDraw()
		return nil
	}
	g.DrawOffer = player
	return nil
}

// RespondDraw answers the opponent's pending draw offer. Accepting ends the
// game drawn; rejecting only withdraws the offer.
func (g *GameState) RespondDraw(player PlayerID, accept bool) error {
	if g.Status != InProgress {
		return seatErr("respond_draw", player, ErrGameNotInProgress)
	}
	if _, seated := g.ColorOf(player); !seated {
		return seatErr("respond_draw", player, ErrPlayerNotInGame)
	}
	if g.DrawOffer == "" || g.DrawOffer == player {
		return seatErr("respond_draw", player, ErrNoDrawOffer)
	}
	if accept {
		g.agreeDraw()
		return nil
	}
	g.DrawOffer = ""
	return nil
}

func (g *GameState) agreeDraw() {
	g.Status = Over
	g.Winner = ""
	g.Result = ResultAgreement
	g.DrawOffer = ""
}
