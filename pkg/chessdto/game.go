package chessdto

import "time"

// MaterialScore sums piece values still on the board per side.
type MaterialScore struct {
	White int `json:"white"`
	Black int `json:"black"`
}

// CapturedPieces lists, per side, the enemy pieces that side has taken.
type CapturedPieces struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

// PieceView is one occupied square.
type PieceView struct {
	Square string `json:"square"`
	Kind   string `json:"kind"`
	Color  string `json:"color"`
}

// GameView is the client snapshot of a game.
type GameView struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	White     string         `json:"white,omitempty"`
	Black     string         `json:"black,omitempty"`
	Turn      string         `json:"turn"`
	InCheck   bool           `json:"inCheck"`
	Winner    string         `json:"winner,omitempty"`
	Result    string         `json:"result,omitempty"`
	DrawOffer string         `json:"drawOffer,omitempty"`
	Opening   *Opening       `json:"opening,omitempty"`
	FEN       string         `json:"fen"`
	MovesUCI  []string       `json:"movesUci"`
	MovesSAN  []string       `json:"movesSan"`
	Pieces    []PieceView    `json:"pieces"`
	Material  MaterialScore  `json:"material"`
	Captured  CapturedPieces `json:"captured"`
	Message   string         `json:"message,omitempty"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Opening names the ECO line the move list has followed.
type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

// LegalMovesView answers a legal-move query for one square.
type LegalMovesView struct {
	Square string   `json:"square"`
	Moves  []string `json:"moves"`
}

// LobbyEntry is a game waiting for a second player.
type LobbyEntry struct {
	ID        string    `json:"id"`
	White     string    `json:"white,omitempty"`
	Black     string    `json:"black,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
