package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-engine/internal/game"
	"github.com/park285/Cheese-chess-engine/internal/obslog"
	"github.com/park285/Cheese-chess-engine/internal/results"
)

const (
	defaultTTL        = 24 * time.Hour
	defaultLobbyLimit = 50
)

// Advisor proposes a move for a FEN position.
type Advisor interface {
	Suggest(ctx context.Context, fen string) (game.MoveRequest, error)
}

// Game is the stored form of one game.
type Game struct {
	ID        string          `json:"id"`
	State     *game.GameState `json:"state"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Update is published on game:<id>:updates after every committed command.
type Update struct {
	GameID string          `json:"gameId"`
	Op     string          `json:"op"`
	Player game.PlayerID   `json:"player,omitempty"`
	Move   string          `json:"move,omitempty"`
	State  *game.GameState `json:"state"`
	At     time.Time       `json:"at"`
}

type Options struct {
	TTL        time.Duration
	LobbyLimit int
	Results    results.Repository
	Advisor    Advisor
}

// Manager hosts games in Redis. Every command loads the game under WATCH,
// runs the rules core on the copy and commits in one transaction, so two
// commands racing on the same game never both commit.
type Manager struct {
	rdb        *redis.Client
	repo       results.Repository
	advisor    Advisor
	ttl        time.Duration
	lobbyLimit int
	now        func() time.Time
}

func NewManager(ctx context.Context, redisURL string, opts Options) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for session manager")
	}
	ro, err := ParseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(rdb, opts), nil
}

// NewWithClient wraps an existing client; Close closes it.
func NewWithClient(rdb *redis.Client, opts Options) *Manager {
	m := &Manager{
		rdb:        rdb,
		repo:       opts.Results,
		advisor:    opts.Advisor,
		ttl:        opts.TTL,
		lobbyLimit: opts.LobbyLimit,
		now:        time.Now,
	}
	if m.ttl <= 0 {
		m.ttl = defaultTTL
	}
	if m.lobbyLimit <= 0 {
		m.lobbyLimit = defaultLobbyLimit
	}
	return m
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// Results exposes the attached repository; nil when none is configured.
func (m *Manager) Results() results.Repository { return m.repo }

// Create stores a new game waiting for players and lists it in the lobby.
func (m *Manager) Create(ctx context.Context) (string, error) {
	return m.create(ctx, game.New())
}

// CreateFromFEN stores a waiting game set up from fen.
func (m *Manager) CreateFromFEN(ctx context.Context, fen string) (string, error) {
	g, err := game.FromFEN(fen)
	if err != nil {
		return "", err
	}
	return m.create(ctx, g)
}

func (m *Manager) create(ctx context.Context, g *game.GameState) (string, error) {
	now := m.now().UTC()
	rec := &Game{ID: uuid.NewString(), State: g, CreatedAt: now, UpdatedAt: now}
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	pipe := m.rdb.TxPipeline()
	pipe.Set(ctx, gameKey(rec.ID), raw, m.ttl)
	pipe.ZAdd(ctx, lobbyKey, redis.Z{Score: float64(now.UnixMilli()), Member: rec.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store game: %w", err)
	}
	obslog.L().Info("game_create", zap.String("game_id", rec.ID), zap.String("fen", g.FEN()))
	return rec.ID, nil
}

// Get loads a game.
func (m *Manager) Get(ctx context.Context, id string) (*Game, error) {
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func decode(raw []byte) (*Game, error) {
	var rec Game
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	if rec.State == nil {
		return nil, fmt.Errorf("decode game %s: missing state", rec.ID)
	}
	return &rec, nil
}

func (m *Manager) Join(ctx context.Context, id string, player game.PlayerID) (*game.GameState, error) {
	return m.mutate(ctx, id, "join", player, "", func(g *game.GameState) error {
		return g.Join(player)
	})
}

func (m *Manager) Leave(ctx context.Context, id string, player game.PlayerID) (*game.GameState, error) {
	return m.mutate(ctx, id, "leave", player, "", func(g *game.GameState) error {
		return g.Leave(player)
	})
}

func (m *Manager) Move(ctx context.Context, id string, player game.PlayerID, req game.MoveRequest) (*game.GameState, error) {
	return m.mutate(ctx, id, "move", player, req.String(), func(g *game.GameState) error {
		_, err := g.Play(player, req)
		return err
	})
}

func (m *Manager) OfferDraw(ctx context.Context, id string, player game.PlayerID) (*game.GameState, error) {
	return m.mutate(ctx, id, "offer_draw", player, "", func(g *game.GameState) error {
		return g.OfferDraw(player)
	})
}

func (m *Manager) RespondDraw(ctx context.Context, id string, player game.PlayerID, accept bool) (*game.GameState, error) {
	return m.mutate(ctx, id, "respond_draw", player, "", func(g *game.GameState) error {
		return g.RespondDraw(player, accept)
	})
}

// mutate runs fn against the stored state under WATCH. A rejected command
// writes nothing; a committed one is indexed, published and, when it ends
// the game, handed to the results repository.
func (m *Manager) mutate(ctx context.Context, id, op string, player game.PlayerID, move string, fn func(*game.GameState) error) (*game.GameState, error) {
	key := gameKey(id)
	var (
		rec     *Game
		wasOver bool
	)
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrGameNotFound
		}
		if err != nil {
			return err
		}
		cur, err := decode(raw)
		if err != nil {
			return err
		}
		wasOver = cur.State.Status == game.Over
		if err := fn(cur.State); err != nil {
			return err
		}
		cur.UpdatedAt = m.now().UTC()
		newRaw, err := json.Marshal(cur)
		if err != nil {
			return err
		}

		pipe := tx.TxPipeline()
		pipe.Set(ctx, key, newRaw, m.ttl)
		if cur.State.Status != game.WaitingToStart {
			pipe.ZRem(ctx, lobbyKey, cur.ID)
		}
		if m.repo != nil && cur.State.Status == game.Over && !wasOver {
			pipe.SAdd(ctx, pendingResultsKey, cur.ID)
		}
		for _, p := range []game.PlayerID{cur.State.White, cur.State.Black} {
			if p == "" {
				continue
			}
			pipe.SAdd(ctx, idxPlayerKey(string(p)), cur.ID)
			pipe.Expire(ctx, idxPlayerKey(string(p)), m.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		rec = cur
		return nil
	}, key)
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			obslog.L().Warn("game_conflict", zap.String("game_id", id), zap.String("op", op))
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	g := rec.State
	obslog.L().Info("game_"+op,
		zap.String("game_id", id),
		zap.String("player", string(player)),
		zap.String("move", move),
		zap.String("status", g.Status.String()),
		zap.Int("plies", len(g.MoveLog)),
	)
	m.publish(ctx, &Update{GameID: id, Op: op, Player: player, Move: move, State: g, At: rec.UpdatedAt})
	if g.Status == game.Over && !wasOver {
		obslog.L().Info("game_over",
			zap.String("game_id", id),
			zap.String("winner", string(g.Winner)),
			zap.String("result", string(g.Result)),
		)
		if err := m.persistIfFinal(ctx, id, g, rec.UpdatedAt); err == nil {
			m.clearPending(ctx, id)
		}
	}
	return g, nil
}

func (m *Manager) publish(ctx context.Context, u *Update) {
	raw, err := json.Marshal(u)
	if err != nil {
		obslog.L().Error("game_publish_error", zap.String("game_id", u.GameID), zap.Error(err))
		return
	}
	if err := m.rdb.Publish(ctx, updatesChannel(u.GameID), raw).Err(); err != nil {
		obslog.L().Warn("game_publish_error", zap.String("game_id", u.GameID), zap.Error(err))
	}
}

// Subscribe listens for updates of one game. The caller closes the PubSub.
func (m *Manager) Subscribe(ctx context.Context, id string) *redis.PubSub {
	return m.rdb.Subscribe(ctx, updatesChannel(id))
}

// DecodeUpdate parses a payload received from Subscribe.
func DecodeUpdate(payload string) (*Update, error) {
	var u Update
	if err := json.Unmarshal([]byte(payload), &u); err != nil {
		return nil, fmt.Errorf("decode update: %w", err)
	}
	if u.State == nil {
		return nil, fmt.Errorf("decode update %s: missing state", u.GameID)
	}
	return &u, nil
}

// persistIfFinal stores the finished game. A result already stored for the
// id counts as success.
func (m *Manager) persistIfFinal(ctx context.Context, id string, g *game.GameState, endedAt time.Time) error {
	if m.repo == nil || g == nil || g.Status != game.Over {
		return nil
	}
	rec, err := results.FromGame(id, g, endedAt)
	if err != nil {
		obslog.L().Error("result_persist_error", zap.String("game_id", id), zap.Error(err))
		return err
	}
	if _, err := m.repo.SaveResult(ctx, rec); err != nil {
		if errors.Is(err, results.ErrDuplicateGame) {
			return nil
		}
		obslog.L().Error("result_persist_error", zap.String("game_id", id), zap.String("result", string(g.Result)), zap.Error(err))
		return err
	}
	obslog.L().Info("result_persist", zap.String("game_id", id), zap.String("result", string(g.Result)), zap.String("winner", string(g.Winner)))
	return nil
}

func (m *Manager) clearPending(ctx context.Context, id string) {
	if err := m.rdb.SRem(ctx, pendingResultsKey, id).Err(); err != nil {
		obslog.L().Warn("result_pending_clear_error", zap.String("game_id", id), zap.Error(err))
	}
}

// FlushPendingResults retries finished games whose result has not reached
// the repository yet and reports how many were stored. Games that expired
// from Redis before they could be stored are dropped from the outbox.
func (m *Manager) FlushPendingResults(ctx context.Context) (int, error) {
	if m.repo == nil {
		return 0, nil
	}
	ids, err := m.rdb.SMembers(ctx, pendingResultsKey).Result()
	if err != nil {
		return 0, err
	}
	sort.Strings(ids)
	var (
		stored int
		result *multierror.Error
	)
	for _, id := range ids {
		rec, err := m.Get(ctx, id)
		if errors.Is(err, ErrGameNotFound) {
			obslog.L().Error("result_lost", zap.String("game_id", id))
			m.clearPending(ctx, id)
			continue
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("load %s: %w", id, err))
			continue
		}
		if err := m.persistIfFinal(ctx, id, rec.State, rec.UpdatedAt); err != nil {
			result = multierror.Append(result, fmt.Errorf("persist %s: %w", id, err))
			continue
		}
		m.clearPending(ctx, id)
		stored++
	}
	return stored, result.ErrorOrNil()
}

// RunResultOutbox flushes pending results immediately and then every
// interval until ctx is done.
func (m *Manager) RunResultOutbox(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := m.FlushPendingResults(ctx); err != nil {
			obslog.L().Warn("result_outbox_error", zap.Int("stored", n), zap.Error(err))
		} else if n > 0 {
			obslog.L().Info("result_outbox_flush", zap.Int("stored", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// GamesOf lists the ids of live games player is seated in.
func (m *Manager) GamesOf(ctx context.Context, player game.PlayerID) ([]string, error) {
	ids, err := m.rdb.SMembers(ctx, idxPlayerKey(string(player))).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Lobby returns games still waiting for a player, oldest first. Entries
// whose game expired are dropped from the lobby set.
func (m *Manager) Lobby(ctx context.Context) ([]*Game, error) {
	ids, err := m.rdb.ZRange(ctx, lobbyKey, 0, int64(m.lobbyLimit)-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*Game, 0, len(ids))
	for _, id := range ids {
		rec, err := m.Get(ctx, id)
		if errors.Is(err, ErrGameNotFound) {
			_ = m.rdb.ZRem(ctx, lobbyKey, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.State.Status != game.WaitingToStart {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Suggest asks the advisor for a move in a game in progress. The proposal is
// checked against the rules before it is returned.
func (m *Manager) Suggest(ctx context.Context, id string) (game.MoveRequest, time.Duration, error) {
	if m.advisor == nil {
		return game.MoveRequest{}, 0, ErrAdvisorUnavailable
	}
	rec, err := m.Get(ctx, id)
	if err != nil {
		return game.MoveRequest{}, 0, err
	}
	g := rec.State
	if g.Status != game.InProgress {
		return game.MoveRequest{}, 0, &game.SeatError{Op: "suggest", Err: game.ErrGameNotInProgress}
	}
	start := m.now()
	req, err := m.advisor.Suggest(ctx, g.FEN())
	took := m.now().Sub(start)
	if err != nil {
		obslog.L().Warn("advisor_error", zap.String("game_id", id), zap.Error(err))
		return game.MoveRequest{}, took, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	probe := g.Clone()
	if _, err := probe.Play(probe.Seat(probe.SideToMove()), req); err != nil {
		obslog.L().Warn("advisor_illegal_move", zap.String("game_id", id), zap.String("move", req.String()), zap.Error(err))
		return game.MoveRequest{}, took, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	obslog.L().Info("advisor_suggest", zap.String("game_id", id), zap.String("move", req.String()), zap.Duration("took", took))
	return req, took, nil
}
