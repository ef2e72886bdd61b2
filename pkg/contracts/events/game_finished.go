package events

import "time"

// Evento emitido pelo game-service quando um jogo é finalizado e os prêmios
// distribuídos. Consumido pelo results-worker para histórico e broadcast.
type GameFinished struct {
	GameID    int64         `json:"game_id"`
	Observed  float64       `json:"observed"` // menor pressão observada (hPa)
	NoWinner  bool          `json:"no_winner"`
	Direction string        `json:"direction,omitempty"` // "high" | "low" quando NoWinner
	Rankings  []RankedGuess `json:"rankings"`
	Ts        time.Time     `json:"ts"`
}

// RankedGuess é uma entrada do ranking final, na ordem do pódio (rank 1 primeiro).
type RankedGuess struct {
	UserID  string  `json:"user_id"`
	Value   float64 `json:"value"`
	Error   float64 `json:"error"` // value - observed (com sinal)
	Wagered bool    `json:"wagered"`
	Reward  int64   `json:"reward"` // moedas pagas (0 se sem aposta ou sem vencedores)
}
