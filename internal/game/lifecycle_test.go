package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/park285/Cheese-chess-engine/internal/board"
)

func TestJoinSeatsWhiteThenBlack(t *testing.T) {
	g := New()
	if err := g.Join(alice); err != nil {
		t.Fatalf("join: %v", err)
	}
	if g.Status != WaitingToStart {
		t.Fatalf("status = %s with one player", g.Status)
	}
	if err := g.Join(alice); !errors.Is(err, ErrAlreadyInGame) {
		t.Fatalf("rejoin error = %v", err)
	}
	if err := g.Join(bob); err != nil {
		t.Fatalf("join bob: %v", err)
	}
	if g.White != alice || g.Black != bob || g.Status != InProgress {
		t.Fatalf("unexpected seats %q/%q status %s", g.White, g.Black, g.Status)
	}
	if err := g.Join("carol"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("third join error = %v", err)
	}
	if err := g.Join("  "); !errors.Is(err, ErrInvalidPlayer) {
		t.Fatalf("blank join error = %v", err)
	}
	var se *SeatError
	if err := g.Join("carol"); !errors.As(err, &se) || se.Op != "join" {
		t.Fatalf("expected SeatError for join, got %#v", err)
	}
	if g.Opponent(alice) != bob || g.Opponent("carol") != "" {
		t.Fatalf("opponent lookup wrong")
	}
}

func TestLeaveBeforeStartFreesSeat(t *testing.T) {
	g := New()
	if err := g.Join(alice); err != nil {
		t.Fatal(err)
	}
	if err := g.Leave(alice); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if g.White != "" || g.Status != WaitingToStart {
		t.Fatalf("seat not freed: white=%q status=%s", g.White, g.Status)
	}
	if err := g.Leave(alice); !errors.Is(err, ErrPlayerNotInGame) {
		t.Fatalf("second leave error = %v", err)
	}
}

func TestLeaveInProgressResigns(t *testing.T) {
	g := newStartedGame(t)
	play(t, g, "e2e4")
	if err := g.Leave(alice); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if g.Status != Over || g.Winner != bob || g.Result != ResultResignation {
		t.Fatalf("status=%s winner=%q result=%q", g.Status, g.Winner, g.Result)
	}
	if err := g.Leave(bob); err != nil {
		t.Fatalf("leave after game over: %v", err)
	}
	if g.Winner != bob {
		t.Fatalf("leaving a finished game changed the winner")
	}
}

func TestDrawOfferAccepted(t *testing.T) {
	g := newStartedGame(t)
	if err := g.RespondDraw(bob, true); !errors.Is(err, ErrNoDrawOffer) {
		t.Fatalf("respond without offer error = %v", err)
	}
	if err := g.OfferDraw(alice); err != nil {
		t.Fatalf("offer: %v", err)
	}
	if err := g.RespondDraw(alice, true); !errors.Is(err, ErrNoDrawOffer) {
		t.Fatalf("answering own offer error = %v", err)
	}
	if err := g.RespondDraw(bob, true); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if g.Status != Over || g.Result != ResultAgreement || g.Winner != "" || g.DrawOffer != "" {
		t.Fatalf("status=%s result=%q winner=%q offer=%q", g.Status, g.Result, g.Winner, g.DrawOffer)
	}
	if err := g.OfferDraw(alice); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("offer after game over error = %v", err)
	}
}

func TestDrawOfferRejectedAndMutual(t *testing.T) {
	g := newStartedGame(t)
	if err := g.OfferDraw(alice); err != nil {
		t.Fatal(err)
	}
	if err := g.RespondDraw(bob, false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if g.DrawOffer != "" || g.Status != InProgress {
		t.Fatalf("reject left offer=%q status=%s", g.DrawOffer, g.Status)
	}

	if err := g.OfferDraw(bob); err != nil {
		t.Fatal(err)
	}
	if err := g.OfferDraw(alice); err != nil {
		t.Fatalf("counter offer: %v", err)
	}
	if g.Status != Over || g.Result != ResultAgreement {
		t.Fatalf("mutual offer did not agree: status=%s result=%q", g.Status, g.Result)
	}
	if err := New().OfferDraw(alice); !errors.Is(err, ErrGameNotInProgress) {
		t.Fatalf("offer before start error = %v", err)
	}
}

func TestMovingDeclinesOpponentOffer(t *testing.T) {
	g := newStartedGame(t)
	if err := g.OfferDraw(bob); err != nil {
		t.Fatal(err)
	}
	play(t, g, "e2e4")
	if g.DrawOffer != "" {
		t.Fatalf("offer survived opponent's move: %q", g.DrawOffer)
	}

	if err := g.OfferDraw(alice); err != nil {
		t.Fatal(err)
	}
	play(t, g, "e7e5")
	if g.DrawOffer != "" {
		t.Fatalf("offer survived reply: %q", g.DrawOffer)
	}
}

func TestOwnOfferSurvivesOwnMove(t *testing.T) {
	g := newStartedGame(t)
	if err := g.OfferDraw(alice); err != nil {
		t.Fatal(err)
	}
	play(t, g, "e2e4")
	if g.DrawOffer != alice {
		t.Fatalf("mover's own offer was cleared")
	}
}

func TestGameStateJSONRoundTrip(t *testing.T) {
	g := newStartedGame(t)
	play(t, g, "e2e4", "c7c5", "g1f3")
	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back GameState
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.FEN() != g.FEN() {
		t.Fatalf("FEN changed across JSON: %q vs %q", back.FEN(), g.FEN())
	}
	if back.Status != InProgress || back.White != alice || back.SideToMove() != board.Black {
		t.Fatalf("decoded state wrong: %+v", back)
	}
	play(t, &back, "d7d6")
	if back.SAN[len(back.SAN)-1] != "d6" {
		t.Fatalf("decoded game cannot continue: %v", back.SAN)
	}
}
