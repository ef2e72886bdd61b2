package events

type GuessPlaced struct {
	GameID   int64   `json:"game_id"`
	UserID   string  `json:"user_id"`
	Value    float64 `json:"value"` // hPa, arredondado para 1 casa decimal
	Wagered  bool    `json:"wagered"`
	TsUnixMs int64   `json:"ts_unix_ms"`
}
