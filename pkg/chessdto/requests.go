package chessdto

// PlayerRequest carries only the acting player; used by join, leave and
// draw offers.
type PlayerRequest struct {
	Player string `json:"player" validate:"required,max=64"`
}

// CreateGameRequest optionally seats the creator straight away and may set
// up the board from a FEN string.
type CreateGameRequest struct {
	Player string `json:"player,omitempty" validate:"omitempty,max=64"`
	FEN    string `json:"fen,omitempty" validate:"omitempty,max=100"`
}

// MoveRequest is a move in coordinate notation, e.g. "e2e4" or "e7e8q".
type MoveRequest struct {
	Player string `json:"player" validate:"required,max=64"`
	Move   string `json:"move" validate:"required,min=4,max=5,alphanum"`
}

// DrawResponseRequest answers the opponent's draw offer.
type DrawResponseRequest struct {
	Player string `json:"player" validate:"required,max=64"`
	Accept *bool  `json:"accept" validate:"required"`
}
