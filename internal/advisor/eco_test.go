package advisor

import (
	"strings"
	"testing"
)

func TestNameOpening(t *testing.T) {
	o, ok := NameOpening([]string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"})
	if !ok {
		t.Fatalf("expected an opening for the Ruy Lopez")
	}
	if !strings.HasPrefix(o.ECO, "C") || !strings.Contains(o.Name, "Ruy Lopez") {
		t.Fatalf("opening = %+v", o)
	}
}

func TestNameOpeningRejectsUnplayableLines(t *testing.T) {
	if _, ok := NameOpening(nil); ok {
		t.Fatalf("empty move list should not name an opening")
	}
	if _, ok := NameOpening([]string{"e2e5"}); ok {
		t.Fatalf("illegal move should not name an opening")
	}
}
