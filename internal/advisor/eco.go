package advisor

import (
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

// Opening is the ECO classification of a move sequence.
type Opening struct {
	ECO  string
	Name string
}

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

// NameOpening classifies the UCI moves of a game played from the standard
// start position. It reports false when no ECO line matches or a move does
// not apply.
func NameOpening(movesUCI []string) (Opening, bool) {
	if len(movesUCI) == 0 {
		return Opening{}, false
	}
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })

	g := chesslib.NewGame()
	for _, mv := range movesUCI {
		if err := g.PushNotationMove(mv, chesslib.UCINotation{}, nil); err != nil {
			return Opening{}, false
		}
	}
	o := ecoBook.Find(g.Moves())
	if o == nil {
		return Opening{}, false
	}
	return Opening{ECO: o.Code(), Name: o.Title()}, true
}
