package board

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestCoordinateMapping(t *testing.T) {
	cases := []struct {
		sq       string
		row, col int
	}{
		{"a8", 0, 0},
		{"h1", 7, 7},
		{"e4", 4, 4},
		{"c7", 1, 2},
	}
	for _, tc := range cases {
		sq := MustSquare(tc.sq)
		if sq.Row() != tc.row || sq.Col() != tc.col {
			t.Fatalf("%s: got row=%d col=%d, want %d/%d", tc.sq, sq.Row(), sq.Col(), tc.row, tc.col)
		}
		if back := SquareAt(tc.row, tc.col); back != sq {
			t.Fatalf("SquareAt(%d,%d) = %s, want %s", tc.row, tc.col, back, sq)
		}
	}
	if Forward(White) != -1 || Forward(Black) != 1 {
		t.Fatalf("unexpected forward deltas: white=%d black=%d", Forward(White), Forward(Black))
	}
}

func TestParseSquareRejectsOffBoard(t *testing.T) {
	for _, raw := range []string{"", "i1", "a9", "a0", "e44", "4e"} {
		if _, err := ParseSquare(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestStandardPlacement(t *testing.T) {
	b := Standard()
	if got, want := b.Placement(), "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"; got != want {
		t.Fatalf("placement = %q, want %q", got, want)
	}
	if err := b.Validate(); err != nil {
		t.Fatalf("standard board invalid: %v", err)
	}
}

func TestBoardCopyIsIndependent(t *testing.T) {
	b := Standard()
	scratch := b
	scratch.Apply(Move{Piece: Piece{Kind: Pawn, Color: White}, From: MustSquare("e2"), To: MustSquare("e4")})
	if _, ok := b.At(MustSquare("e2")); !ok {
		t.Fatalf("original board mutated through copy")
	}
	if p, ok := scratch.At(MustSquare("e4")); !ok || !p.HasMoved {
		t.Fatalf("copy did not receive move: %+v ok=%v", p, ok)
	}
}

func TestValidateRejectsMissingKing(t *testing.T) {
	b, err := ParsePlacement("8/8/8/8/8/8/8/4K3")
	if err != nil {
		t.Fatalf("ParsePlacement: %v", err)
	}
	if err := b.Validate(); err == nil {
		t.Fatalf("expected validation error for missing black king")
	}
}

func TestParsePlacementErrors(t *testing.T) {
	for _, field := range []string{
		"8/8/8/8/8/8/8",
		"9/8/8/8/8/8/8/8",
		"rnbqkbnrr/8/8/8/8/8/8/8",
		"rnbqkbnx/8/8/8/8/8/8/8",
		"7/8/8/8/8/8/8/8",
	} {
		if _, err := ParsePlacement(field); err == nil {
			t.Fatalf("expected error for %q", field)
		}
	}
}

func TestPlacementRoundTrip(t *testing.T) {
	field := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R"
	b, err := ParsePlacement(field)
	if err != nil {
		t.Fatalf("ParsePlacement: %v", err)
	}
	if got := b.Placement(); got != field {
		t.Fatalf("round trip = %q, want %q", got, field)
	}
}

func TestBoardJSONRoundTrip(t *testing.T) {
	b := Standard()
	b.Apply(Move{Piece: Piece{Kind: Knight, Color: White}, From: MustSquare("g1"), To: MustSquare("f3")})
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Board
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != b {
		t.Fatalf("board changed across JSON:\n%s\nvs\n%s", back.String(), b.String())
	}
	if p, _ := back.At(MustSquare("f3")); !p.HasMoved {
		t.Fatalf("hasMoved lost across JSON")
	}
}

func destinations(moves []Move) []string {
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		s := m.To.String()
		if m.Promotion.Valid() {
			s += string(m.Promotion.Letter())
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
