package chessdto

import "time"

// PlayerStats aggregates a player's finished games.
type PlayerStats struct {
	Player       string    `json:"player"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Draws        int       `json:"draws"`
	LastPlayedAt time.Time `json:"lastPlayedAt,omitempty"`
}
