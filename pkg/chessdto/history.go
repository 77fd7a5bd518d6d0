package chessdto

import "time"

// GameRecord is a finished game as stored by the results repository.
type GameRecord struct {
	ID       int64     `json:"id"`
	GameID   string    `json:"gameId"`
	White    string    `json:"white"`
	Black    string    `json:"black"`
	Winner   string    `json:"winner,omitempty"`
	Result   string    `json:"result"`
	FEN      string    `json:"fen"`
	MovesUCI []string  `json:"movesUci"`
	MovesSAN []string  `json:"movesSan"`
	PGN      string    `json:"pgn"`
	EndedAt  time.Time `json:"endedAt"`
}
