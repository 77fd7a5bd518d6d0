// Package httpapi serves the JSON API over the session manager.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-engine/internal/adapter/chesspresenter"
	"github.com/park285/Cheese-chess-engine/internal/board"
	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/internal/msgcat"
	"github.com/park285/Cheese-chess-engine/internal/obslog"
	"github.com/park285/Cheese-chess-engine/internal/render"
	"github.com/park285/Cheese-chess-engine/internal/session"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

const apiPrefix = "/api/v1/"

type Server struct {
	mgr      *session.Manager
	cat      *msgcat.Catalog
	validate *validator.Validate
	srv      *fasthttp.Server
}

func New(mgr *session.Manager, cat *msgcat.Catalog) *Server {
	if cat == nil {
		cat = msgcat.MustDefault()
	}
	s := &Server{mgr: mgr, cat: cat, validate: validator.New()}
	s.srv = &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "chess-server",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error { return s.srv.ListenAndServe(addr) }

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handler wraps routing with panic recovery and an access log.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				obslog.L().Error("http_panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				writeJSON(ctx, fasthttp.StatusInternalServerError, chessdto.DomainError{Code: chessdto.CodeInternal, Message: s.render("errors.internal", nil)})
			}
			obslog.L().Info("http_request",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("latency", time.Since(start)),
			)
		}()
		s.route(ctx)
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())
	if path == "/health" {
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if !strings.HasPrefix(path, apiPrefix) {
		s.notFound(ctx)
		return
	}
	seg := strings.Split(strings.Trim(strings.TrimPrefix(path, apiPrefix), "/"), "/")

	switch {
	case len(seg) == 1 && seg[0] == "games" && method == fasthttp.MethodPost:
		s.createGame(ctx)
	case len(seg) == 1 && seg[0] == "games" && method == fasthttp.MethodGet:
		s.lobby(ctx)
	case len(seg) >= 2 && seg[0] == "games":
		s.routeGame(ctx, method, seg[1], seg[2:])
	case len(seg) == 3 && seg[0] == "players" && method == fasthttp.MethodGet:
		s.routePlayer(ctx, game.PlayerID(seg[1]), seg[2])
	case len(seg) == 2 && seg[0] == "results" && method == fasthttp.MethodGet:
		s.result(ctx, seg[1])
	default:
		s.notFound(ctx)
	}
}

func (s *Server) routeGame(ctx *fasthttp.RequestCtx, method, id string, rest []string) {
	action := strings.Join(rest, "/")
	switch {
	case action == "" && method == fasthttp.MethodGet:
		s.getGame(ctx, id)
	case action == "fen" && method == fasthttp.MethodGet:
		s.fen(ctx, id)
	case action == "legal" && method == fasthttp.MethodGet:
		s.legalMoves(ctx, id)
	case action == "board.png" && method == fasthttp.MethodGet:
		s.boardPNG(ctx, id)
	case action == "suggest" && method == fasthttp.MethodGet:
		s.suggest(ctx, id)
	case action == "join" && method == fasthttp.MethodPost:
		s.playerCommand(ctx, id, s.mgr.Join)
	case action == "leave" && method == fasthttp.MethodPost:
		s.playerCommand(ctx, id, s.mgr.Leave)
	case action == "draw" && method == fasthttp.MethodPost:
		s.playerCommand(ctx, id, s.mgr.OfferDraw)
	case action == "draw/respond" && method == fasthttp.MethodPost:
		s.respondDraw(ctx, id)
	case action == "moves" && method == fasthttp.MethodPost:
		s.move(ctx, id)
	default:
		s.notFound(ctx)
	}
}

func (s *Server) routePlayer(ctx *fasthttp.RequestCtx, player game.PlayerID, action string) {
	switch action {
	case "games":
		ids, err := s.mgr.GamesOf(ctx, player)
		if err != nil {
			s.writeError(ctx, "", err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, ids)
	case "history":
		repo := s.mgr.Results()
		if repo == nil {
			writeJSON(ctx, fasthttp.StatusOK, []*chessdto.GameRecord{})
			return
		}
		limit, _ := strconv.Atoi(string(ctx.QueryArgs().Peek("limit")))
		recs, err := repo.Recent(ctx, player, limit)
		if err != nil {
			s.writeError(ctx, "", err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToGameRecords(recs))
	case "stats":
		repo := s.mgr.Results()
		if repo == nil {
			writeJSON(ctx, fasthttp.StatusOK, &chessdto.PlayerStats{Player: string(player)})
			return
		}
		st, err := repo.Stats(ctx, player)
		if err != nil {
			s.writeError(ctx, "", err)
			return
		}
		writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToPlayerStats(st))
	default:
		s.notFound(ctx)
	}
}

func (s *Server) createGame(ctx *fasthttp.RequestCtx) {
	var req chessdto.CreateGameRequest
	if len(ctx.PostBody()) > 0 && !s.bind(ctx, &req) {
		return
	}
	var (
		id  string
		err error
	)
	if req.FEN != "" {
		id, err = s.mgr.CreateFromFEN(ctx, req.FEN)
		if err != nil {
			writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: err.Error()})
			return
		}
	} else if id, err = s.mgr.Create(ctx); err != nil {
		s.writeError(ctx, "", err)
		return
	}
	if req.Player != "" {
		if _, err := s.mgr.Join(ctx, id, game.PlayerID(req.Player)); err != nil {
			s.writeError(ctx, id, err)
			return
		}
	}
	rec, err := s.mgr.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	v := chesspresenter.ToGameView(id, rec.State, rec.UpdatedAt)
	v.Message = s.render("game.created", map[string]any{"GameID": id})
	writeJSON(ctx, fasthttp.StatusCreated, v)
}

func (s *Server) lobby(ctx *fasthttp.RequestCtx) {
	games, err := s.mgr.Lobby(ctx)
	if err != nil {
		s.writeError(ctx, "", err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToLobby(games))
}

func (s *Server) getGame(ctx *fasthttp.RequestCtx, id string) {
	rec, err := s.mgr.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	v := chesspresenter.ToGameView(id, rec.State, rec.UpdatedAt)
	v.Message = s.cat.Outcome(rec.State)
	writeJSON(ctx, fasthttp.StatusOK, v)
}

func (s *Server) fen(ctx *fasthttp.RequestCtx, id string) {
	rec, err := s.mgr.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString(rec.State.FEN())
}

func (s *Server) legalMoves(ctx *fasthttp.RequestCtx, id string) {
	sq, err := board.ParseSquare(string(ctx.QueryArgs().Peek("square")))
	if err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: err.Error()})
		return
	}
	rec, err := s.mgr.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToLegalMoves(rec.State, sq))
}

func (s *Server) boardPNG(ctx *fasthttp.RequestCtx, id string) {
	rec, err := s.mgr.Get(ctx, id)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	g := rec.State
	material, _ := chesspresenter.Material(&g.Board)
	header := fmt.Sprintf("%s vs %s", orQuestion(g.White), orQuestion(g.Black))
	png, err := render.RenderGame(ctx, g, header, material.White-material.Black)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.SetBody(png)
}

func (s *Server) suggest(ctx *fasthttp.RequestCtx, id string) {
	req, took, err := s.mgr.Suggest(ctx, id)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToSuggestion(id, req, took))
}

type playerOp func(ctx context.Context, id string, player game.PlayerID) (*game.GameState, error)

func (s *Server) playerCommand(ctx *fasthttp.RequestCtx, id string, op playerOp) {
	var req chessdto.PlayerRequest
	if !s.bind(ctx, &req) {
		return
	}
	g, err := op(ctx, id, game.PlayerID(req.Player))
	s.writeState(ctx, id, g, err)
}

func (s *Server) respondDraw(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.DrawResponseRequest
	if !s.bind(ctx, &req) {
		return
	}
	g, err := s.mgr.RespondDraw(ctx, id, game.PlayerID(req.Player), *req.Accept)
	if err == nil && !*req.Accept {
		s.writeStateWith(ctx, id, g, s.render("game.draw_declined", nil))
		return
	}
	s.writeState(ctx, id, g, err)
}

func (s *Server) move(ctx *fasthttp.RequestCtx, id string) {
	var req chessdto.MoveRequest
	if !s.bind(ctx, &req) {
		return
	}
	mr, err := game.ParseMoveRequest(req.Move)
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	g, err := s.mgr.Move(ctx, id, game.PlayerID(req.Player), mr)
	s.writeState(ctx, id, g, err)
}

func (s *Server) result(ctx *fasthttp.RequestCtx, gameID string) {
	repo := s.mgr.Results()
	if repo == nil {
		s.writeError(ctx, gameID, session.ErrGameNotFound)
		return
	}
	rec, err := repo.Get(ctx, gameID)
	if err != nil {
		s.writeError(ctx, gameID, err)
		return
	}
	if rec == nil {
		s.writeError(ctx, gameID, session.ErrGameNotFound)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chesspresenter.ToGameRecord(rec))
}

func (s *Server) writeState(ctx *fasthttp.RequestCtx, id string, g *game.GameState, err error) {
	if err != nil {
		s.writeError(ctx, id, err)
		return
	}
	s.writeStateWith(ctx, id, g, s.cat.Outcome(g))
}

func (s *Server) writeStateWith(ctx *fasthttp.RequestCtx, id string, g *game.GameState, message string) {
	v := chesspresenter.ToGameView(id, g, time.Now().UTC())
	v.Message = message
	writeJSON(ctx, fasthttp.StatusOK, v)
}

// bind decodes and validates the JSON body; on failure the 400 response is
// already written.
func (s *Server) bind(ctx *fasthttp.RequestCtx, dst any) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: "invalid request body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: validationDetails(err)})
		return false
	}
	return true
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// writeError maps session and rules errors onto DomainError responses.
func (s *Server) writeError(ctx *fasthttp.RequestCtx, gameID string, err error) {
	extra := map[string]any{"GameID": gameID}
	switch {
	case errors.Is(err, session.ErrGameNotFound):
		writeJSON(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: s.render("errors.game_not_found", extra)})
	case errors.Is(err, session.ErrConcurrentUpdate):
		writeJSON(ctx, fasthttp.StatusConflict, chessdto.DomainError{Code: chessdto.CodeConflict, Message: s.render("errors.busy", nil), Retryable: true})
	case errors.Is(err, session.ErrAdvisorUnavailable):
		writeJSON(ctx, fasthttp.StatusServiceUnavailable, chessdto.DomainError{Code: chessdto.CodeAdvisorUnavailable, Message: s.render("errors.advisor_unavailable", nil), Retryable: true})
	case errors.Is(err, game.ErrInvalidMoveRequest):
		writeJSON(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{Code: "invalid_move", Message: s.cat.Describe(err, extra)})
	case msgcat.ErrorKey(err) != "":
		code := strings.TrimPrefix(msgcat.ErrorKey(err), "errors.")
		writeJSON(ctx, fasthttp.StatusUnprocessableEntity, chessdto.DomainError{Code: code, Message: s.cat.Describe(err, extra)})
	default:
		obslog.L().Error("http_internal_error", zap.String("game_id", gameID), zap.Error(err))
		writeJSON(ctx, fasthttp.StatusInternalServerError, chessdto.DomainError{Code: chessdto.CodeInternal, Message: s.render("errors.internal", nil)})
	}
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: "no such endpoint"})
}

func (s *Server) render(key string, data map[string]any) string {
	msg, err := s.cat.Render(key, data)
	if err != nil {
		return key
	}
	return msg
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func orQuestion(p game.PlayerID) string {
	if p == "" {
		return "?"
	}
	return string(p)
}
