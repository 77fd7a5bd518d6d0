// Package wsapi pushes game updates to websocket watchers.
package wsapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/Cheese-chess-engine/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/internal/msgcat"
	"github.com/park285/Cheese-chess-engine/internal/obslog"
	"github.com/park285/Cheese-chess-engine/internal/session"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

const writeTimeout = 5 * time.Second

type Server struct {
	mgr          *session.Manager
	cat          *msgcat.Catalog
	pingInterval time.Duration
	srv          *http.Server
}

func New(mgr *session.Manager, cat *msgcat.Catalog) *Server {
	if cat == nil {
		cat = msgcat.MustDefault()
	}
	s := &Server{mgr: mgr, cat: cat, pingInterval: 30 * time.Second}
	s.srv = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/games/{id}", s.serveGame)
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.srv.Addr = addr
	return s.srv.ListenAndServe()
}

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }

// serveGame sends a snapshot and then one update per committed command. The
// connection closes normally once the game is over.
func (s *Server) serveGame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.mgr.Get(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrGameNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		obslog.L().Error("ws_load_error", zap.String("game_id", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
		OriginPatterns:  []string{"*"},
	})
	if err != nil {
		obslog.L().Warn("ws_accept_error", zap.String("game_id", id), zap.Error(err))
		return
	}
	defer conn.CloseNow()

	// Watchers never send frames; CloseRead cancels ctx when they go away.
	ctx := conn.CloseRead(r.Context())
	sub := s.mgr.Subscribe(ctx, id)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		obslog.L().Warn("ws_subscribe_error", zap.String("game_id", id), zap.Error(err))
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}

	// The snapshot is read after subscribing so no update falls in between.
	rec, err := s.mgr.Get(ctx, id)
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "load failed")
		return
	}
	if err := s.write(ctx, conn, s.event(chessdto.EventSnapshot, id, rec.State, "", "", "", rec.UpdatedAt)); err != nil {
		return
	}
	obslog.L().Debug("ws_watch", zap.String("game_id", id))
	if rec.State.Status == game.Over {
		_ = conn.Close(websocket.StatusNormalClosure, "game over")
		return
	}

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	updates := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case msg, ok := <-updates:
			if !ok {
				_ = conn.Close(websocket.StatusGoingAway, "server closing")
				return
			}
			u, err := session.DecodeUpdate(msg.Payload)
			if err != nil {
				obslog.L().Warn("ws_update_decode_error", zap.String("game_id", id), zap.Error(err))
				continue
			}
			ev := s.event(chessdto.EventUpdate, id, u.State, u.Op, string(u.Player), u.Move, u.At)
			if err := s.write(ctx, conn, ev); err != nil {
				return
			}
			if u.State.Status == game.Over {
				_ = conn.Close(websocket.StatusNormalClosure, "game over")
				return
			}
		}
	}
}

func (s *Server) event(typ, id string, g *game.GameState, op, player, move string, at time.Time) *chessdto.GameEvent {
	view := chesspresenter.ToGameView(id, g, at)
	view.Message = s.cat.Outcome(g)
	return &chessdto.GameEvent{Type: typ, Op: op, Player: player, Move: move, Game: view}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, ev *chessdto.GameEvent) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(wctx, conn, ev); err != nil {
		obslog.L().Debug("ws_write_error", zap.String("game_id", ev.Game.ID), zap.Error(err))
		return err
	}
	return nil
}
