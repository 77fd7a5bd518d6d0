package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/Cheese-chess-engine/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-engine/internal/msgcat"
)

func newTestREPL(t *testing.T, fen string) (*repl, *bytes.Buffer) {
	t.Helper()
	cat := msgcat.MustDefault()
	lb, err := newLocalBackend(cat, nil, fen)
	if err != nil {
		t.Fatalf("newLocalBackend: %v", err)
	}
	var out bytes.Buffer
	r := &repl{out: &out, backend: lb, formatter: chesspresenter.NewFormatter(cat)}
	r.presenter = chesspresenter.NewPresenter(r.formatter, func(message string) error {
		out.WriteString(message + "\n")
		return nil
	}, nil)
	return r, &out
}

func TestHotSeatFoolsMate(t *testing.T) {
	r, out := newTestREPL(t, "")
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		if !r.exec(mv) {
			t.Fatalf("exec %s stopped the REPL", mv)
		}
	}
	if r.last == nil || r.last.Status != "over" || r.last.Winner != "black" || r.last.Result != "checkmate" {
		t.Fatalf("last view = %+v", r.last)
	}
	if !strings.Contains(out.String(), "Checkmate. black wins.") {
		t.Fatalf("outcome missing from output:\n%s", out.String())
	}
	if got := r.prompt(); got != "chess [over]> " {
		t.Fatalf("prompt = %q", got)
	}
}

func TestRejectedMovePrintsCatalogMessage(t *testing.T) {
	r, out := newTestREPL(t, "")
	r.exec("e2e5")
	if !strings.Contains(out.String(), "! e2e5 is not a legal move for that piece.") {
		t.Fatalf("output = %q", out.String())
	}
	r.exec("e7e5")
	if !strings.Contains(out.String(), "There is no piece of yours on e7") {
		t.Fatalf("output = %q", out.String())
	}
	if r.last != nil {
		t.Fatalf("rejections must not produce a view")
	}
}

func TestHotSeatDrawAndDecline(t *testing.T) {
	r, out := newTestREPL(t, "")
	r.exec("draw")
	if r.last.DrawOffer != "white" {
		t.Fatalf("offer = %+v", r.last)
	}
	r.exec("decline")
	if r.last.DrawOffer != "" || !strings.Contains(out.String(), "declined") {
		t.Fatalf("decline = %+v", r.last)
	}
	r.exec("draw")
	r.exec("draw")
	if r.last.Status != "over" || r.last.Result != "agreement" {
		t.Fatalf("agreement = %+v", r.last)
	}
}

func TestMovesFenBoardAndHint(t *testing.T) {
	r, out := newTestREPL(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	r.exec("moves e1")
	if !strings.Contains(out.String(), "e1g1") {
		t.Fatalf("castling missing from legal moves: %q", out.String())
	}
	out.Reset()
	r.exec("fen")
	if strings.TrimSpace(out.String()) != "4k3/8/8/8/8/8/8/4K2R w K - 0 1" {
		t.Fatalf("fen = %q", out.String())
	}
	out.Reset()
	r.exec("hint")
	if !strings.Contains(out.String(), errNoEngine.Error()) {
		t.Fatalf("hint without engine = %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "board.png")
	r.exec("board " + path)
	data, err := os.ReadFile(path)
	if err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("board png err=%v", err)
	}
	if r.exec("quit") {
		t.Fatalf("quit should stop the REPL")
	}
}

func TestResignAndNew(t *testing.T) {
	r, _ := newTestREPL(t, "")
	r.exec("resign")
	if r.last.Status != "over" || r.last.Winner != "black" {
		t.Fatalf("resign = %+v", r.last)
	}
	r.exec("new")
	if r.last.Status != "in_progress" || len(r.last.MovesUCI) != 0 {
		t.Fatalf("new = %+v", r.last)
	}
	v, err := r.backend.View(context.Background())
	if err != nil || v.Turn != "white" {
		t.Fatalf("view = %+v err=%v", v, err)
	}
}
