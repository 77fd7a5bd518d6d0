package msgcat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/Cheese-chess-engine/internal/board"
	"github.com/park285/Cheese-chess-engine/internal/game"
)

func TestEmbeddedCatalogCoversRulesErrors(t *testing.T) {
	c := MustDefault()
	for _, e := range errorKeys {
		if !c.Has(e.key) {
			t.Fatalf("missing catalog key %s", e.key)
		}
	}
	for _, r := range []game.Result{game.ResultCheckmate, game.ResultStalemate, game.ResultResignation, game.ResultAgreement} {
		if !c.Has("over." + string(r)) {
			t.Fatalf("missing outcome key for %s", r)
		}
	}
}

func TestDescribeMoveError(t *testing.T) {
	c := MustDefault()
	g := game.New()
	_ = g.Join("alice")
	_ = g.Join("bob")
	err := g.ApplyMove("bob", board.Move{
		Piece: board.Piece{Kind: board.Pawn, Color: board.Black},
		From:  board.MustSquare("e7"),
		To:    board.MustSquare("e5"),
	})
	if got := c.Describe(err, nil); got != "It is not your turn, bob." {
		t.Fatalf("Describe = %q", got)
	}

	wrapped := fmt.Errorf("session move: %w", err)
	if ErrorKey(wrapped) != "errors.not_your_turn" {
		t.Fatalf("wrapped error lost its key")
	}
}

func TestDescribeFallsBackToInternal(t *testing.T) {
	c := MustDefault()
	if got := c.Describe(errors.New("boom"), nil); !strings.HasPrefix(got, "Something went wrong") {
		t.Fatalf("Describe = %q", got)
	}
}

func TestOutcome(t *testing.T) {
	c := MustDefault()
	g := game.New()
	_ = g.Join("alice")
	_ = g.Join("bob")
	if c.Outcome(g) != "" {
		t.Fatalf("running game should have no outcome line")
	}
	_ = g.Leave("alice")
	if got := c.Outcome(g); got != "bob wins by resignation." {
		t.Fatalf("Outcome = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("errors:\n  game_full: \"Sorry, table is full.\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got, _ := c.Render("errors.game_full", nil); got != "Sorry, table is full." {
		t.Fatalf("override not applied: %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("errors:\n  game_full: \"dup\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestRenderMissingField(t *testing.T) {
	c := MustDefault()
	if _, err := c.Render("over.checkmate", map[string]any{}); err == nil {
		t.Fatalf("expected error for missing Winner")
	}
	if _, err := c.Render("nope", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
