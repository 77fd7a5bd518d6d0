package chesspresenter

import (
	"github.com/park285/Cheese-chess-engine/internal/results"
	"github.com/park285/Cheese-chess-engine/internal/session"
	"github.com/park285/Cheese-chess-engine/pkg/chessdto"
)

func ToGameRecord(r *results.Record) *chessdto.GameRecord {
	if r == nil {
		return nil
	}
	return &chessdto.GameRecord{
		ID:       r.ID,
		GameID:   r.GameID,
		White:    string(r.White),
		Black:    string(r.Black),
		Winner:   string(r.Winner),
		Result:   string(r.Result),
		FEN:      r.FinalFEN,
		MovesUCI: r.MovesUCI,
		MovesSAN: r.MovesSAN,
		PGN:      r.PGN,
		EndedAt:  r.EndedAt,
	}
}

func ToGameRecords(rs []*results.Record) []*chessdto.GameRecord {
	out := make([]*chessdto.GameRecord, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, ToGameRecord(r))
		}
	}
	return out
}

func ToPlayerStats(s *results.Stats) *chessdto.PlayerStats {
	if s == nil {
		return nil
	}
	return &chessdto.PlayerStats{
		Player:       string(s.Player),
		GamesPlayed:  s.GamesPlayed,
		Wins:         s.Wins,
		Losses:       s.Losses,
		Draws:        s.Draws,
		LastPlayedAt: s.LastPlayedAt,
	}
}

func ToLobby(games []*session.Game) []chessdto.LobbyEntry {
	out := make([]chessdto.LobbyEntry, 0, len(games))
	for _, g := range games {
		out = append(out, chessdto.LobbyEntry{
			ID:        g.ID,
			White:     string(g.State.White),
			Black:     string(g.State.Black),
			CreatedAt: g.CreatedAt,
		})
	}
	return out
}
