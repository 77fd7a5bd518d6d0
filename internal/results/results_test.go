package results

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/park285/Cheese-chess-engine/internal/game"
)

func finishedGame(t *testing.T, white, black game.PlayerID, moves ...string) *game.GameState {
	t.Helper()
	g := game.New()
	if err := g.Join(white); err != nil {
		t.Fatal(err)
	}
	if err := g.Join(black); err != nil {
		t.Fatal(err)
	}
	for _, raw := range moves {
		req, err := game.ParseMoveRequest(raw)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := g.Play(g.Seat(g.SideToMove()), req); err != nil {
			t.Fatalf("play %s: %v", raw, err)
		}
	}
	return g
}

func foolsMate(t *testing.T) *game.GameState {
	return finishedGame(t, "alice", "bob", "f2f3", "e7e5", "g2g4", "d8h4")
}

func TestFromGameRequiresFinishedGame(t *testing.T) {
	g := finishedGame(t, "alice", "bob", "e2e4")
	if _, err := FromGame("g1", g, time.Now()); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("error = %v, want ErrNotFinished", err)
	}
}

func TestBuildPGNFoolsMate(t *testing.T) {
	rec, err := FromGame("g1", foolsMate(t), time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("FromGame: %v", err)
	}
	want := strings.Join([]string{
		`[Event "Casual game"]`,
		`[Site "Cheese chess"]`,
		`[Date "2026.01.02"]`,
		`[White "alice"]`,
		`[Black "bob"]`,
		`[Result "0-1"]`,
		`[Termination "checkmate"]`,
		``,
		`1. f3 e5 2. g4 Qh4# 0-1`,
	}, "\n")
	if rec.PGN != want {
		t.Fatalf("PGN:\n%s\nwant:\n%s", rec.PGN, want)
	}
}

func TestBuildPGNFromImportedPosition(t *testing.T) {
	g, err := game.FromFEN("4k3/8/8/8/8/8/4q3/4K3 b - - 0 30")
	if err != nil {
		t.Fatal(err)
	}
	_ = g.Join("alice")
	_ = g.Join("bob")
	if err := g.Leave("bob"); err != nil {
		t.Fatal(err)
	}
	rec, err := FromGame("g2", g, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.PGN, `[SetUp "1"]`) || !strings.Contains(rec.PGN, `[FEN "4k3/8/8/8/8/8/4q3/4K3 b - - 0 30"]`) {
		t.Fatalf("PGN missing setup tags:\n%s", rec.PGN)
	}
	if !strings.HasSuffix(rec.PGN, "1-0") {
		t.Fatalf("resignation by black should score 1-0:\n%s", rec.PGN)
	}

	rec.MovesSAN = []string{"Qe4", "Kd2"}
	if got := BuildPGN(rec, 59); !strings.HasSuffix(got, "30... Qe4 31. Kd2 1-0") {
		t.Fatalf("numbering from offset wrong:\n%s", got)
	}
}

func TestPGNResult(t *testing.T) {
	cases := []struct {
		rec  Record
		want string
	}{
		{Record{White: "a", Black: "b", Winner: "a", Result: game.ResultCheckmate}, "1-0"},
		{Record{White: "a", Black: "b", Winner: "b", Result: game.ResultResignation}, "0-1"},
		{Record{White: "a", Black: "b", Result: game.ResultStalemate}, "1/2-1/2"},
		{Record{White: "a", Black: "b"}, "*"},
	}
	for _, tc := range cases {
		if got := PGNResult(&tc.rec); got != tc.want {
			t.Fatalf("PGNResult(%+v) = %s, want %s", tc.rec, got, tc.want)
		}
	}
}

func TestSanitizePGN(t *testing.T) {
	if got := sanitizePGN(` a"b\c `); got != `a'b c` {
		t.Fatalf("sanitizePGN = %q", got)
	}
}

func TestNumberedQuestion(t *testing.T) {
	got := numberedQuestion("WHERE a = $1 OR b = $2 LIMIT $10")
	if got != "WHERE a = ?1 OR b = ?2 LIMIT ?10" {
		t.Fatalf("rebind = %q", got)
	}
}

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	ctx := context.Background()
	repos := map[string]Repository{"memory": NewMemory()}

	sqliteRepo, err := NewSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	repos["sqlite"] = sqliteRepo

	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		pg, err := NewPostgres(ctx, dsn)
		if err != nil {
			t.Fatalf("NewPostgres: %v", err)
		}
		repos["postgres"] = pg
	}
	t.Cleanup(func() {
		for _, r := range repos {
			_ = r.Close()
		}
	})
	return repos
}

func TestRepositoryContract(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	suffix := time.Now().UTC().Format("150405.000000000")

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			mate, err := FromGame("mate-"+suffix, foolsMate(t), base)
			if err != nil {
				t.Fatal(err)
			}
			id, err := repo.SaveResult(ctx, mate)
			if err != nil || id == 0 {
				t.Fatalf("SaveResult: id=%d err=%v", id, err)
			}
			if _, err := repo.SaveResult(ctx, mate); !errors.Is(err, ErrDuplicateGame) {
				t.Fatalf("second save error = %v, want ErrDuplicateGame", err)
			}

			drawn := finishedGame(t, "bob", "carol", "e2e4")
			if err := drawn.OfferDraw("bob"); err != nil {
				t.Fatal(err)
			}
			if err := drawn.RespondDraw("carol", true); err != nil {
				t.Fatal(err)
			}
			drawRec, err := FromGame("draw-"+suffix, drawn, base.Add(time.Hour))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := repo.SaveResult(ctx, drawRec); err != nil {
				t.Fatalf("save draw: %v", err)
			}

			got, err := repo.Get(ctx, "mate-"+suffix)
			if err != nil || got == nil {
				t.Fatalf("Get: rec=%v err=%v", got, err)
			}
			if got.Winner != "bob" || got.Result != game.ResultCheckmate || got.PGN != mate.PGN {
				t.Fatalf("stored record differs: %+v", got)
			}
			if strings.Join(got.MovesSAN, " ") != "f3 e5 g4 Qh4#" || len(got.MovesUCI) != 4 {
				t.Fatalf("moves lost: %v / %v", got.MovesSAN, got.MovesUCI)
			}
			if !got.EndedAt.Equal(base) {
				t.Fatalf("ended_at = %s, want %s", got.EndedAt, base)
			}

			missing, err := repo.Get(ctx, "missing-"+suffix)
			if err != nil || missing != nil {
				t.Fatalf("missing game: rec=%v err=%v", missing, err)
			}

			recent, err := repo.Recent(ctx, "bob", 10)
			if err != nil {
				t.Fatalf("Recent: %v", err)
			}
			if name != "postgres" {
				if len(recent) != 2 || recent[0].GameID != "draw-"+suffix {
					t.Fatalf("recent order wrong: %+v", recent)
				}
			}

			st, err := repo.Stats(ctx, "bob")
			if err != nil {
				t.Fatalf("Stats: %v", err)
			}
			if name != "postgres" {
				if st.GamesPlayed != 2 || st.Wins != 1 || st.Draws != 1 || st.Losses != 0 {
					t.Fatalf("stats = %+v", st)
				}
				if !st.LastPlayedAt.Equal(base.Add(time.Hour)) {
					t.Fatalf("last played = %s", st.LastPlayedAt)
				}
			}
			alice, err := repo.Stats(ctx, "alice")
			if err != nil {
				t.Fatal(err)
			}
			if name != "postgres" && (alice.Losses != 1 || alice.GamesPlayed != 1) {
				t.Fatalf("alice stats = %+v", alice)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, "memory", "")
	if err != nil || repo == nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, err := Open(ctx, "oracle", ""); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := Open(ctx, "postgres", ""); err == nil {
		t.Fatalf("expected error for postgres without url")
	}
}
