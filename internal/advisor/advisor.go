// Package advisor suggests moves by asking a UCI engine such as Stockfish.
// It only ever sees FEN text; the rules engine never calls it.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/internal/obslog"
)

// ErrNoMove means the engine had no move to offer (mate or stalemate).
var ErrNoMove = errors.New("engine returned no move")

type Config struct {
	BinaryPath string
	MoveTime   time.Duration
	PoolSize   int
	Engine     EngineOptions
	// BookPath optionally names a Polyglot book consulted first.
	BookPath string
	// Level, when set, overrides MoveTime and Engine.SkillLevel; see
	// LevelByName.
	Level string
}

type Advisor struct {
	pool     *Pool
	book     *Book
	moveTime time.Duration
	level    *Level

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func New(cfg Config) (*Advisor, error) {
	var level *Level
	if strings.TrimSpace(cfg.Level) != "" {
		l, err := LevelByName(cfg.Level)
		if err != nil {
			return nil, err
		}
		if err := l.validate(); err != nil {
			return nil, err
		}
		cfg.Engine.SkillLevel = l.SkillLevel
		level = &l
	}
	pool, err := NewPool(cfg.BinaryPath, cfg.Engine, cfg.PoolSize)
	if err != nil {
		return nil, err
	}
	a := &Advisor{
		pool:     pool,
		moveTime: cfg.MoveTime,
		level:    level,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if a.moveTime <= 0 {
		a.moveTime = 300 * time.Millisecond
	}
	if strings.TrimSpace(cfg.BookPath) != "" {
		book, err := LoadBook(cfg.BookPath)
		if err != nil {
			_ = pool.Close()
			return nil, err
		}
		a.book = book
	}
	return a, nil
}

func (a *Advisor) Close() error {
	if a == nil || a.pool == nil {
		return nil
	}
	return a.pool.Close()
}

// Suggest returns the engine's choice for the side to move in fen.
func (a *Advisor) Suggest(ctx context.Context, fen string) (game.MoveRequest, error) {
	if bm, ok, err := a.book.Lookup(fen); err != nil {
		obslog.L().Warn("advisor_book_error", zap.String("fen", fen), zap.Error(err))
	} else if ok {
		obslog.L().Debug("advisor_book_hit", zap.String("move", bm.Move), zap.Uint16("weight", bm.Weight))
		return game.ParseMoveRequest(bm.Move)
	}

	resp, err := a.search(ctx, fen)
	if err != nil {
		return game.MoveRequest{}, err
	}
	if resp.BestMove == "" || resp.BestMove == "(none)" || resp.BestMove == "0000" {
		return game.MoveRequest{}, ErrNoMove
	}
	move := resp.BestMove
	if a.level != nil && a.level.MultiPV > 1 && len(resp.Candidates) > 1 {
		a.rndMu.Lock()
		cand, err := pickCandidate(*a.level, resp.Candidates, a.rnd)
		a.rndMu.Unlock()
		if err == nil {
			move = cand.Move
		}
	}
	req, err := game.ParseMoveRequest(move)
	if err != nil {
		return game.MoveRequest{}, fmt.Errorf("engine move %q: %w", move, err)
	}
	return req, nil
}

// Analyse returns the engine's ranked candidates for fen.
func (a *Advisor) Analyse(ctx context.Context, fen string) ([]Candidate, error) {
	resp, err := a.search(ctx, fen)
	if err != nil {
		return nil, err
	}
	return resp.Candidates, nil
}

func (a *Advisor) search(ctx context.Context, fen string) (resp SearchResponse, err error) {
	s, err := a.pool.Acquire(ctx)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("acquire engine: %w", err)
	}
	defer func() { a.pool.Release(s, err) }()

	if err = s.NewGame(ctx); err != nil {
		return SearchResponse{}, err
	}
	limits := Limits{MoveTimeMillis: int(a.moveTime / time.Millisecond)}
	if a.level != nil {
		limits = a.level.limits()
	}
	return s.Search(ctx, fen, limits)
}
