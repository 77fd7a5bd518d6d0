package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/park285/Cheese-chess-engine/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-engine/internal/advisor"
	"github.com/park285/Cheese-chess-engine/internal/board"
	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/internal/httpapi"
	"github.com/park285/Cheese-chess-engine/internal/msgcat"
	"github.com/park285/Cheese-chess-engine/internal/render"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

// backend is what the REPL drives: an in-process hot-seat game or a game
// hosted by chess-server.
type backend interface {
	View(ctx context.Context) (*chessdto.GameView, error)
	Move(ctx context.Context, raw string) (*chessdto.GameView, error)
	LegalMoves(ctx context.Context, square string) (*chessdto.LegalMovesView, error)
	BoardPNG(ctx context.Context) ([]byte, error)
	Hint(ctx context.Context) (*chessdto.Suggestion, error)
	OfferDraw(ctx context.Context) (*chessdto.GameView, error)
	DeclineDraw(ctx context.Context) (*chessdto.GameView, error)
	Resign(ctx context.Context) (*chessdto.GameView, error)
	Reset(ctx context.Context) (*chessdto.GameView, error)
	Close() error
}

var errNoEngine = errors.New("no engine configured, start with -engine")

const (
	hotSeatWhite game.PlayerID = "white"
	hotSeatBlack game.PlayerID = "black"
)

// localBackend seats both sides at one terminal; every command acts for
// whoever has to answer next.
type localBackend struct {
	g        *game.GameState
	cat      *msgcat.Catalog
	adv      *advisor.Advisor
	startFEN string
	updated  time.Time
}

func newLocalBackend(cat *msgcat.Catalog, adv *advisor.Advisor, fen string) (*localBackend, error) {
	b := &localBackend{cat: cat, adv: adv, startFEN: fen}
	if _, err := b.Reset(context.Background()); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *localBackend) Reset(context.Context) (*chessdto.GameView, error) {
	g := game.New()
	if b.startFEN != "" {
		var err error
		if g, err = game.FromFEN(b.startFEN); err != nil {
			return nil, err
		}
	}
	if err := g.Join(hotSeatWhite); err != nil {
		return nil, err
	}
	if err := g.Join(hotSeatBlack); err != nil {
		return nil, err
	}
	b.g = g
	return b.view(""), nil
}

func (b *localBackend) view(message string) *chessdto.GameView {
	b.updated = time.Now().UTC()
	v := chesspresenter.ToGameView("local", b.g, b.updated)
	v.Message = message
	if v.Message == "" {
		v.Message = b.cat.Outcome(b.g)
	}
	return v
}

// rejected turns a rules error into the catalog message.
func (b *localBackend) rejected(err error) error {
	return errors.New(b.cat.Describe(err, nil))
}

func (b *localBackend) View(context.Context) (*chessdto.GameView, error) { return b.view(""), nil }

func (b *localBackend) Move(_ context.Context, raw string) (*chessdto.GameView, error) {
	req, err := game.ParseMoveRequest(raw)
	if err != nil {
		return nil, b.rejected(err)
	}
	if _, err := b.g.Play(b.g.Seat(b.g.SideToMove()), req); err != nil {
		return nil, b.rejected(err)
	}
	return b.view(""), nil
}

func (b *localBackend) LegalMoves(_ context.Context, square string) (*chessdto.LegalMovesView, error) {
	sq, err := board.ParseSquare(square)
	if err != nil {
		return nil, err
	}
	return chesspresenter.ToLegalMoves(b.g, sq), nil
}

func (b *localBackend) BoardPNG(ctx context.Context) ([]byte, error) {
	material, _ := chesspresenter.Material(&b.g.Board)
	return render.RenderGame(ctx, b.g, "Hot seat", material.White-material.Black)
}

func (b *localBackend) Hint(ctx context.Context) (*chessdto.Suggestion, error) {
	if b.adv == nil {
		return nil, errNoEngine
	}
	if b.g.Status != game.InProgress {
		return nil, b.rejected(game.ErrGameNotInProgress)
	}
	start := time.Now()
	req, err := b.adv.Suggest(ctx, b.g.FEN())
	if err != nil {
		return nil, err
	}
	if _, err := b.g.Clone().Play(b.g.Seat(b.g.SideToMove()), req); err != nil {
		return nil, fmt.Errorf("engine suggested %s: %w", req, err)
	}
	return chesspresenter.ToSuggestion("local", req, time.Since(start)), nil
}

// responder is the seat expected to answer a pending offer, or the side to
// move when nothing is pending.
func (b *localBackend) responder() game.PlayerID {
	switch b.g.DrawOffer {
	case hotSeatWhite:
		return hotSeatBlack
	case hotSeatBlack:
		return hotSeatWhite
	default:
		return b.g.Seat(b.g.SideToMove())
	}
}

func (b *localBackend) OfferDraw(context.Context) (*chessdto.GameView, error) {
	if err := b.g.OfferDraw(b.responder()); err != nil {
		return nil, b.rejected(err)
	}
	return b.view(""), nil
}

func (b *localBackend) DeclineDraw(context.Context) (*chessdto.GameView, error) {
	if err := b.g.RespondDraw(b.responder(), false); err != nil {
		return nil, b.rejected(err)
	}
	msg, _ := b.cat.Render("game.draw_declined", nil)
	return b.view(msg), nil
}

func (b *localBackend) Resign(context.Context) (*chessdto.GameView, error) {
	if err := b.g.Leave(b.g.Seat(b.g.SideToMove())); err != nil {
		return nil, b.rejected(err)
	}
	return b.view(""), nil
}

func (b *localBackend) Close() error { return b.adv.Close() }

// remoteBackend plays one seat of a game hosted by chess-server.
type remoteBackend struct {
	client *httpapi.Client
	gameID string
	player string
}

// newRemoteBackend joins gameID, or creates a game and takes its first seat
// when gameID is empty.
func newRemoteBackend(ctx context.Context, client *httpapi.Client, gameID, player string) (*remoteBackend, error) {
	b := &remoteBackend{client: client, gameID: gameID, player: player}
	if gameID == "" {
		v, err := client.CreateGame(ctx, chessdto.CreateGameRequest{Player: player})
		if err != nil {
			return nil, err
		}
		b.gameID = v.ID
		return b, nil
	}
	v, err := client.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if v.White != player && v.Black != player {
		if _, err := client.Join(ctx, gameID, player); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *remoteBackend) View(ctx context.Context) (*chessdto.GameView, error) {
	return b.client.Game(ctx, b.gameID)
}

func (b *remoteBackend) Move(ctx context.Context, raw string) (*chessdto.GameView, error) {
	return b.client.Move(ctx, b.gameID, b.player, raw)
}

func (b *remoteBackend) LegalMoves(ctx context.Context, square string) (*chessdto.LegalMovesView, error) {
	return b.client.LegalMoves(ctx, b.gameID, square)
}

func (b *remoteBackend) BoardPNG(ctx context.Context) ([]byte, error) {
	return b.client.BoardPNG(ctx, b.gameID)
}

func (b *remoteBackend) Hint(ctx context.Context) (*chessdto.Suggestion, error) {
	return b.client.Suggest(ctx, b.gameID)
}

func (b *remoteBackend) OfferDraw(ctx context.Context) (*chessdto.GameView, error) {
	v, err := b.client.Game(ctx, b.gameID)
	if err != nil {
		return nil, err
	}
	if v.DrawOffer != "" && v.DrawOffer != b.player {
		return b.client.RespondDraw(ctx, b.gameID, b.player, true)
	}
	return b.client.OfferDraw(ctx, b.gameID, b.player)
}

func (b *remoteBackend) DeclineDraw(ctx context.Context) (*chessdto.GameView, error) {
	return b.client.RespondDraw(ctx, b.gameID, b.player, false)
}

func (b *remoteBackend) Resign(ctx context.Context) (*chessdto.GameView, error) {
	return b.client.Leave(ctx, b.gameID, b.player)
}

func (b *remoteBackend) Reset(ctx context.Context) (*chessdto.GameView, error) {
	v, err := b.client.CreateGame(ctx, chessdto.CreateGameRequest{Player: b.player})
	if err != nil {
		return nil, err
	}
	b.gameID = v.ID
	return v, nil
}

func (b *remoteBackend) Close() error { return nil }
