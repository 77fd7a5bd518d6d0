package results

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chess_results (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id    TEXT NOT NULL UNIQUE,
	white_id   TEXT NOT NULL,
	black_id   TEXT NOT NULL,
	winner_id  TEXT NOT NULL DEFAULT '',
	result     TEXT NOT NULL,
	start_fen  TEXT NOT NULL DEFAULT '',
	final_fen  TEXT NOT NULL,
	moves_uci  TEXT NOT NULL,
	moves_san  TEXT NOT NULL,
	pgn        TEXT NOT NULL,
	ended_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS chess_results_white_idx ON chess_results (white_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS chess_results_black_idx ON chess_results (black_id, ended_at DESC);`

var sqliteDialect = dialect{
	name:   "sqlite",
	schema: sqliteSchema,
	rebind: numberedQuestion,
}

// NewSQLite opens a go-sqlite3 database; dsn may be a file path or
// ":memory:". A single connection is used so in-memory databases are
// shared across calls.
func NewSQLite(ctx context.Context, dsn string) (Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite dsn is required")
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	repo, err := newSQLRepository(ctx, db, sqliteDialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}
