package chessdto

const (
	EventSnapshot = "snapshot"
	EventUpdate   = "update"
)

// GameEvent is one websocket frame. A snapshot is sent once on connect;
// every committed command after that arrives as an update.
type GameEvent struct {
	Type   string    `json:"type"`
	Op     string    `json:"op,omitempty"`
	Player string    `json:"player,omitempty"`
	Move   string    `json:"move,omitempty"`
	Game   *GameView `json:"game"`
}
