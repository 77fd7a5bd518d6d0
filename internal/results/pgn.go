package results

import (
	"fmt"
	"strings"

	"github.com/park285/Cheese-chess-engine/internal/game"
)

// PGNResult maps a record to the PGN result token.
func PGNResult(rec *Record) string {
	switch {
	case rec.Result == game.ResultNone:
		return "*"
	case rec.Winner == "":
		return "1/2-1/2"
	case rec.Winner == rec.White:
		return "1-0"
	case rec.Winner == rec.Black:
		return "0-1"
	}
	return "*"
}

// BuildPGN renders rec as PGN. plyOffset is the number of plies before the
// first recorded move, for games started from an imported position.
func BuildPGN(rec *Record, plyOffset int) string {
	if rec == nil {
		return ""
	}
	result := PGNResult(rec)
	date := rec.EndedAt
	var b strings.Builder
	b.WriteString("[Event \"Casual game\"]\n")
	b.WriteString("[Site \"Cheese chess\"]\n")
	fmt.Fprintf(&b, "[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day())
	fmt.Fprintf(&b, "[White \"%s\"]\n", sanitizePGN(string(rec.White)))
	fmt.Fprintf(&b, "[Black \"%s\"]\n", sanitizePGN(string(rec.Black)))
	fmt.Fprintf(&b, "[Result \"%s\"]\n", result)
	if rec.StartFEN != "" {
		b.WriteString("[SetUp \"1\"]\n")
		fmt.Fprintf(&b, "[FEN \"%s\"]\n", sanitizePGN(rec.StartFEN))
	}
	if rec.Result != game.ResultNone {
		fmt.Fprintf(&b, "[Termination \"%s\"]\n", sanitizePGN(string(rec.Result)))
	}
	b.WriteString("\n")

	for i, san := range rec.MovesSAN {
		ply := plyOffset + i
		switch {
		case ply%2 == 0:
			fmt.Fprintf(&b, "%d. ", ply/2+1)
		case i == 0:
			fmt.Fprintf(&b, "%d... ", ply/2+1)
		}
		b.WriteString(strings.TrimSpace(san))
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
