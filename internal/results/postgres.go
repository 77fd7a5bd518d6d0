package results

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS chess_results (
	id         BIGSERIAL PRIMARY KEY,
	game_id    TEXT NOT NULL UNIQUE,
	white_id   TEXT NOT NULL,
	black_id   TEXT NOT NULL,
	winner_id  TEXT NOT NULL DEFAULT '',
	result     TEXT NOT NULL,
	start_fen  TEXT NOT NULL DEFAULT '',
	final_fen  TEXT NOT NULL,
	moves_uci  JSONB NOT NULL,
	moves_san  JSONB NOT NULL,
	pgn        TEXT NOT NULL,
	ended_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS chess_results_white_idx ON chess_results (white_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS chess_results_black_idx ON chess_results (black_id, ended_at DESC);`

var postgresDialect = dialect{
	name:     "postgres",
	schema:   postgresSchema,
	jsonCast: "::jsonb",
}

// NewPostgres opens databaseURL with lib/pq, checks connectivity and
// creates the results table if needed.
func NewPostgres(ctx context.Context, databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	repo, err := newSQLRepository(ctx, db, postgresDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
