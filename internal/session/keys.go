package session

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

func gameKey(id string) string        { return "game:" + strings.TrimSpace(id) }
func updatesChannel(id string) string { return gameKey(id) + ":updates" }
func idxPlayerKey(p string) string    { return "player:" + strings.TrimSpace(p) + ":games" }

const (
	lobbyKey          = "lobby:waiting"
	pendingResultsKey = "results:pending"
)

// ParseRedisURL accepts redis:// and rediss:// URLs with an optional
// password and a numeric db path. rediss:// connects over TLS.
func ParseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("redis db %q: %w", p, err)
		}
		db = n
	}
	pass, _ := u.User.Password()
	opts := &redis.Options{Addr: u.Host, Username: u.User.Username(), Password: pass, DB: db}
	if u.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: u.Hostname()}
	}
	return opts, nil
}
