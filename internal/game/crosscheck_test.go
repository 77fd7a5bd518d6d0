package game_test

import (
	"math/rand/v2"
	"strings"
	"testing"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-chess-engine/internal/game"
)

// comparable FEN fields: placement, side, castling, clocks. The en passant
// field is left out because reference libraries differ on when to print it.
func fenKey(fen string) string {
	f := strings.Fields(fen)
	if len(f) != 6 {
		return fen
	}
	return strings.Join([]string{f[0], f[1], f[2], f[4], f[5]}, " ")
}

func lastMove(g *nchess.Game) *nchess.Move {
	moves := g.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

type pair struct {
	ours *game.GameState
	ref  *nchess.Game
}

func newPair(t *testing.T) *pair {
	t.Helper()
	g := game.New()
	if err := g.Join("w"); err != nil {
		t.Fatal(err)
	}
	if err := g.Join("b"); err != nil {
		t.Fatal(err)
	}
	return &pair{ours: g, ref: nchess.NewGame()}
}

func (p *pair) push(t *testing.T, uci string) {
	t.Helper()
	req, err := game.ParseMoveRequest(uci)
	if err != nil {
		t.Fatalf("parse %s: %v", uci, err)
	}
	player := p.ours.Seat(p.ours.SideToMove())
	if _, err := p.ours.Play(player, req); err != nil {
		t.Fatalf("engine rejected %s: %v", uci, err)
	}

	pos := p.ref.Position()
	if err := p.ref.PushNotationMove(uci, nchess.UCINotation{}, nil); err != nil {
		t.Fatalf("reference rejected %s: %v", uci, err)
	}
	last := lastMove(p.ref)
	if last == nil {
		t.Fatalf("reference recorded no move for %s", uci)
	}
	wantSAN := nchess.AlgebraicNotation{}.Encode(pos, last)
	if got := p.ours.SAN[len(p.ours.SAN)-1]; got != wantSAN {
		t.Fatalf("SAN for %s = %q, reference %q", uci, got, wantSAN)
	}
	p.compare(t, uci)
}

func (p *pair) compare(t *testing.T, after string) {
	t.Helper()
	if got, want := fenKey(p.ours.FEN()), fenKey(p.ref.FEN()); got != want {
		t.Fatalf("after %s FEN = %q, reference %q", after, got, want)
	}
	if p.ref.Outcome() != nchess.NoOutcome {
		return
	}
	if got, want := len(p.ours.AllLegalMoves()), len(p.ref.ValidMoves()); got != want {
		t.Fatalf("after %s legal move count = %d, reference %d", after, got, want)
	}
}

func TestScriptedGamesMatchReference(t *testing.T) {
	scripts := map[string][]string{
		"fools_mate":  {"f2f3", "e7e5", "g2g4", "d8h4"},
		"castling":    {"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1", "f8c5", "d2d3", "e8g8"},
		"long_castle": {"d2d4", "d7d5", "b1c3", "b8c6", "c1f4", "c8f5", "d1d2", "d8d7", "e1c1", "e8c8"},
		"en_passant":  {"e2e4", "a7a6", "e4e5", "d7d5", "e5d6", "c7d6"},
		"promotion":   {"e2e4", "d7d5", "e4d5", "c7c6", "d5c6", "d8d7", "c6b7", "d7d6", "b7a8q"},
		"underpromo":  {"e2e4", "d7d5", "e4d5", "c7c6", "d5c6", "d8d7", "c6b7", "d7d6", "b7a8n"},
	}
	for name, moves := range scripts {
		t.Run(name, func(t *testing.T) {
			p := newPair(t)
			for _, mv := range moves {
				p.push(t, mv)
			}
		})
	}
}

func TestFoolsMateOutcomeMatchesReference(t *testing.T) {
	p := newPair(t)
	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		p.push(t, mv)
	}
	if p.ref.Outcome() != nchess.BlackWon {
		t.Fatalf("reference outcome = %s", p.ref.Outcome())
	}
	if p.ours.Status != game.Over || p.ours.Winner != p.ours.Black {
		t.Fatalf("engine status=%s winner=%q", p.ours.Status, p.ours.Winner)
	}
}

func TestRandomPlayoutsMatchReference(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*7919))
		p := newPair(t)
		for ply := 0; ply < 120; ply++ {
			if p.ours.Status != game.InProgress || p.ref.Outcome() != nchess.NoOutcome {
				break
			}
			legal := p.ours.AllLegalMoves()
			if len(legal) == 0 {
				t.Fatalf("seed %d: no legal moves while in progress", seed)
			}
			p.push(t, legal[rng.IntN(len(legal))].UCI())
		}
	}
}
