package chessdto

// Suggestion is an engine hint for the side to move.
type Suggestion struct {
	GameID     string `json:"gameId"`
	Move       string `json:"move"`
	From       string `json:"from"`
	To         string `json:"to"`
	Promotion  string `json:"promotion,omitempty"`
	DurationMS int64  `json:"durationMs"`
}
