package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/park285/Cheese-chess-engine/internal/game"
)

// Repository stores finished games. Get returns nil, nil when the game id is
// unknown.
type Repository interface {
	SaveResult(ctx context.Context, rec *Record) (int64, error)
	Get(ctx context.Context, gameID string) (*Record, error)
	Recent(ctx context.Context, player game.PlayerID, limit int) ([]*Record, error)
	Stats(ctx context.Context, player game.PlayerID) (*Stats, error)
	Close() error
}

// dialect isolates the SQL differences between Postgres and SQLite.
type dialect struct {
	name     string
	schema   string
	jsonCast string
	// rebind rewrites $N placeholders when the driver wants another form.
	rebind func(string) string
}

type sqlRepository struct {
	db *sql.DB
	d  dialect
}

func newSQLRepository(ctx context.Context, db *sql.DB, d dialect) (*sqlRepository, error) {
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, fmt.Errorf("%s: ensure schema: %w", d.name, err)
	}
	return &sqlRepository{db: db, d: d}, nil
}

func (r *sqlRepository) q(query string) string {
	if r.d.rebind == nil {
		return query
	}
	return r.d.rebind(query)
}

func (r *sqlRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *sqlRepository) SaveResult(ctx context.Context, rec *Record) (int64, error) {
	if rec == nil {
		return 0, errors.New("nil result record")
	}
	movesUCI, err := json.Marshal(nonNil(rec.MovesUCI))
	if err != nil {
		return 0, fmt.Errorf("marshal moves_uci: %w", err)
	}
	movesSAN, err := json.Marshal(nonNil(rec.MovesSAN))
	if err != nil {
		return 0, fmt.Errorf("marshal moves_san: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO chess_results (
			game_id, white_id, black_id, winner_id, result,
			start_fen, final_fen, moves_uci, moves_san, pgn, ended_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8%[1]s, $9%[1]s, $10, $11)
		ON CONFLICT (game_id) DO NOTHING
		RETURNING id`, r.d.jsonCast)

	var id sql.NullInt64
	err = r.db.QueryRowContext(ctx, r.q(query),
		rec.GameID,
		string(rec.White),
		string(rec.Black),
		string(rec.Winner),
		string(rec.Result),
		rec.StartFEN,
		rec.FinalFEN,
		string(movesUCI),
		string(movesSAN),
		rec.PGN,
		rec.EndedAt.UTC(),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !id.Valid) {
		return 0, ErrDuplicateGame
	}
	if err != nil {
		return 0, fmt.Errorf("insert result: %w", err)
	}
	rec.ID = id.Int64
	return id.Int64, nil
}

const selectColumns = `
	SELECT id, game_id, white_id, black_id, winner_id, result,
		start_fen, final_fen, moves_uci, moves_san, pgn, ended_at
	FROM chess_results`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec                      Record
		white, black, winner     string
		result                   string
		movesUCIRaw, movesSANRaw []byte
	)
	if err := row.Scan(
		&rec.ID, &rec.GameID, &white, &black, &winner, &result,
		&rec.StartFEN, &rec.FinalFEN, &movesUCIRaw, &movesSANRaw, &rec.PGN, &rec.EndedAt,
	); err != nil {
		return nil, err
	}
	rec.White, rec.Black, rec.Winner = game.PlayerID(white), game.PlayerID(black), game.PlayerID(winner)
	rec.Result = game.Result(result)
	if err := json.Unmarshal(movesUCIRaw, &rec.MovesUCI); err != nil {
		return nil, fmt.Errorf("unmarshal moves_uci: %w", err)
	}
	if err := json.Unmarshal(movesSANRaw, &rec.MovesSAN); err != nil {
		return nil, fmt.Errorf("unmarshal moves_san: %w", err)
	}
	return &rec, nil
}

func (r *sqlRepository) Get(ctx context.Context, gameID string) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, r.q(selectColumns+` WHERE game_id = $1`), gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select result: %w", err)
	}
	return rec, nil
}

func (r *sqlRepository) Recent(ctx context.Context, player game.PlayerID, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 10
	}
	query := selectColumns + `
		WHERE white_id = $1 OR black_id = $2
		ORDER BY ended_at DESC, id DESC
		LIMIT $3`
	rows, err := r.db.QueryContext(ctx, r.q(query), string(player), string(player), limit)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	defer rows.Close()

	out := make([]*Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqlRepository) Stats(ctx context.Context, player game.PlayerID) (*Stats, error) {
	query := `SELECT winner_id, ended_at FROM chess_results WHERE white_id = $1 OR black_id = $2`
	rows, err := r.db.QueryContext(ctx, r.q(query), string(player), string(player))
	if err != nil {
		return nil, fmt.Errorf("select stats: %w", err)
	}
	defer rows.Close()

	st := &Stats{Player: player}
	for rows.Next() {
		var rec Record
		var winner string
		if err := rows.Scan(&winner, &rec.EndedAt); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		rec.Winner = game.PlayerID(winner)
		st.tally(&rec)
	}
	return st, rows.Err()
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// numberedQuestion turns $N into ?N, which SQLite binds by position.
func numberedQuestion(query string) string {
	return placeholderRe.ReplaceAllString(query, "?$1")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
