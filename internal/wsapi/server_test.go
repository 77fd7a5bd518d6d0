package wsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"nhooyr.io/websocket"

	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/internal/session"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

func newTestServer(t *testing.T) (*session.Manager, *httptest.Server) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	mgr, err := session.NewManager(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), session.Options{})
	if err != nil {
		t.Fatalf("session.NewManager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	ts := httptest.NewServer(New(mgr, nil).Handler())
	t.Cleanup(ts.Close)
	return mgr, ts
}

func wsURL(ts *httptest.Server, id string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/games/" + id
}

func nextEvent(t *testing.T, events <-chan *chessdto.GameEvent) *chessdto.GameEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for event")
		return nil
	}
}

func waitState(t *testing.T, w *Watcher, want WatcherState) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if w.State() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", w.State(), want)
}

func TestWatcherFollowsGame(t *testing.T) {
	mgr, ts := newTestServer(t)
	ctx := context.Background()
	id, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	events := make(chan *chessdto.GameEvent, 16)
	w := NewWatcher(wsURL(ts, id), 0)
	w.OnEvent(func(ev *chessdto.GameEvent) { events <- ev })
	if err := w.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer func() { _ = w.Close(context.Background()) }()

	snap := nextEvent(t, events)
	if snap.Type != chessdto.EventSnapshot || snap.Game.ID != id || snap.Game.Status != "waiting_to_start" {
		t.Fatalf("snapshot = %+v", snap)
	}

	if _, err := mgr.Join(ctx, id, "alice"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Join(ctx, id, "bob"); err != nil {
		t.Fatal(err)
	}
	if ev := nextEvent(t, events); ev.Type != chessdto.EventUpdate || ev.Op != "join" || ev.Player != "alice" {
		t.Fatalf("first update = %+v", ev)
	}
	if ev := nextEvent(t, events); ev.Game.Status != "in_progress" || ev.Game.Black != "bob" {
		t.Fatalf("second update = %+v", ev)
	}

	req, _ := game.ParseMoveRequest("e2e4")
	if _, err := mgr.Move(ctx, id, "alice", req); err != nil {
		t.Fatal(err)
	}
	ev := nextEvent(t, events)
	if ev.Op != "move" || ev.Move != "e2e4" || ev.Game.Turn != "black" {
		t.Fatalf("move update = %+v", ev)
	}

	if _, err := mgr.Leave(ctx, id, "bob"); err != nil {
		t.Fatal(err)
	}
	ev = nextEvent(t, events)
	if ev.Game.Status != "over" || ev.Game.Winner != "alice" || ev.Game.Message == "" {
		t.Fatalf("final update = %+v", ev)
	}
	waitState(t, w, StateFinished)
}

func TestFinishedGameSendsSnapshotAndCloses(t *testing.T) {
	mgr, ts := newTestServer(t)
	ctx := context.Background()
	id, _ := mgr.Create(ctx)
	_, _ = mgr.Join(ctx, id, "alice")
	_, _ = mgr.Join(ctx, id, "bob")
	_, _ = mgr.Leave(ctx, id, "alice")

	events := make(chan *chessdto.GameEvent, 4)
	w := NewWatcher(wsURL(ts, id), 3)
	w.OnEvent(func(ev *chessdto.GameEvent) { events <- ev })
	if err := w.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer func() { _ = w.Close(context.Background()) }()

	if ev := nextEvent(t, events); ev.Type != chessdto.EventSnapshot || ev.Game.Winner != "bob" {
		t.Fatalf("snapshot = %+v", ev)
	}
	waitState(t, w, StateFinished)
}

func TestUnknownGameIsRejectedBeforeUpgrade(t *testing.T) {
	_, ts := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, wsURL(ts, "missing"), nil)
	if err == nil {
		t.Fatalf("expected dial error")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("response = %+v", resp)
	}

	w := NewWatcher(wsURL(ts, "missing"), 0)
	if err := w.Connect(ctx); err == nil || w.State() != StateFailed {
		t.Fatalf("Connect err=%v state=%s", err, w.State())
	}
}
