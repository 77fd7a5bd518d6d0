package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

// Client talks to a chess-server over the JSON API. API failures come back
// as chessdto.DomainError values.
type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateGame(ctx context.Context, req chessdto.CreateGameRequest) (*chessdto.GameView, error) {
	var v chessdto.GameView
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/api/v1/games", req, &v, false); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Lobby(ctx context.Context) ([]chessdto.LobbyEntry, error) {
	var out []chessdto.LobbyEntry
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/v1/games", nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Game(ctx context.Context, id string) (*chessdto.GameView, error) {
	var v chessdto.GameView
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(id, ""), nil, &v, true); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Join(ctx context.Context, id, player string) (*chessdto.GameView, error) {
	return c.command(ctx, id, "join", chessdto.PlayerRequest{Player: player})
}

func (c *Client) Leave(ctx context.Context, id, player string) (*chessdto.GameView, error) {
	return c.command(ctx, id, "leave", chessdto.PlayerRequest{Player: player})
}

func (c *Client) OfferDraw(ctx context.Context, id, player string) (*chessdto.GameView, error) {
	return c.command(ctx, id, "draw", chessdto.PlayerRequest{Player: player})
}

func (c *Client) RespondDraw(ctx context.Context, id, player string, accept bool) (*chessdto.GameView, error) {
	return c.command(ctx, id, "draw/respond", chessdto.DrawResponseRequest{Player: player, Accept: &accept})
}

func (c *Client) Move(ctx context.Context, id, player, move string) (*chessdto.GameView, error) {
	return c.command(ctx, id, "moves", chessdto.MoveRequest{Player: player, Move: move})
}

func (c *Client) LegalMoves(ctx context.Context, id, square string) (*chessdto.LegalMovesView, error) {
	var v chessdto.LegalMovesView
	path := gamePath(id, "legal") + "?square=" + url.QueryEscape(square)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &v, true); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) Suggest(ctx context.Context, id string) (*chessdto.Suggestion, error) {
	var v chessdto.Suggestion
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(id, "suggest"), nil, &v, false); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) FEN(ctx context.Context, id string) (string, error) {
	body, err := c.do(ctx, fasthttp.MethodGet, gamePath(id, "fen"), nil, true)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) BoardPNG(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, fasthttp.MethodGet, gamePath(id, "board.png"), nil, true)
}

func (c *Client) History(ctx context.Context, player string, limit int) ([]*chessdto.GameRecord, error) {
	var out []*chessdto.GameRecord
	path := fmt.Sprintf("/api/v1/players/%s/history?limit=%d", url.PathEscape(player), limit)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context, player string) (*chessdto.PlayerStats, error) {
	var out chessdto.PlayerStats
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/api/v1/players/"+url.PathEscape(player)+"/stats", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) command(ctx context.Context, id, action string, body any) (*chessdto.GameView, error) {
	var v chessdto.GameView
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, action), body, &v, false); err != nil {
		return nil, err
	}
	return &v, nil
}

func gamePath(id, action string) string {
	p := "/api/v1/games/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, retry bool) error {
	body, err := c.do(ctx, method, path, in, retry)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// do sends one request. Transport errors and 5xx responses are retried only
// when retry is set; a retryable DomainError (a lost optimistic update) is
// always retried since nothing was committed.
func (c *Client) do(ctx context.Context, method, path string, in any, retry bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := max(c.retryMax, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if !retry || attempt == attempts {
				return nil, lastErr
			}
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			derr := decodeError(status, resp.Body())
			lastErr = derr
			if attempt == attempts || !(derr.Retryable && status == fasthttp.StatusConflict || retry && shouldRetryStatus(status)) {
				return nil, derr
			}
		} else {
			return append([]byte(nil), resp.Body()...), nil
		}
		if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
			return nil, lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

func decodeError(status int, body []byte) chessdto.DomainError {
	var de chessdto.DomainError
	if err := json.Unmarshal(body, &de); err != nil || de.Code == "" {
		return chessdto.DomainError{
			Code:    chessdto.CodeInternal,
			Message: fmt.Sprintf("chess api error: status=%d body=%s", status, truncate(string(body), 512)),
		}
	}
	return de
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
