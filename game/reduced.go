package game

// PlayerView is everything a player may see of themselves.
type PlayerView struct {
	ID       string `json:"id"`
	Hand     Pile   `json:"hand"`
	DrawSize int    `json:"draw_size"`
	Discard  Pile   `json:"discard"`
	Played   Pile   `json:"played"`
	Staged   Pile   `json:"staged"`
	Current  string `json:"current,omitempty"`
	Actions  int    `json:"actions"`
	Buys     int    `json:"buys"`
	Treasure int    `json:"treasure"`
	Points   int    `json:"points"`
}

// EnemyView is what everyone can see of a player. Never the hand.
type EnemyView struct {
	ID          string `json:"id"`
	HandSize    int    `json:"hand_size"`
	DrawSize    int    `json:"draw_size"`
	DiscardSize int    `json:"discard_size"`
	DiscardTop  string `json:"discard_top,omitempty"`
	Played      Pile   `json:"played"`
	Current     string `json:"current,omitempty"`
	Actions     int    `json:"actions"`
	Buys        int    `json:"buys"`
	Treasure    int    `json:"treasure"`
	Points      int    `json:"points"`
}

// ReducedState is the game as one player is allowed to see it.
type ReducedState struct {
	Board         Board         `json:"board"`
	Phase         Phase         `json:"phase"`
	CurrentPlayer string        `json:"current_player"`
	Player        PlayerView    `json:"player"`
	Enemies       []EnemyView   `json:"enemies"`
	PendingOrder  *PendingOrder `json:"pending_order,omitempty"`
	GameOver      bool          `json:"game_over,omitempty"`
}

// PlayerResult is a final score.
type PlayerResult struct {
	PlayerID string `json:"player_id"`
	Points   int    `json:"points"`
}
