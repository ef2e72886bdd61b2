package engine

import (
	"context"
	"time"
)

// Colaboradores externos do core. O engine nunca formata mensagem de chat nem
// toca encoding de storage: tudo sai por essas interfaces estreitas.

// Ledger é a carteira de moedas dos jogadores (wallet-service).
// PayStake deve devolver ErrInsufficientFunds (via errors.Is) quando o saldo
// não cobre a stake.
type Ledger interface {
	PayStake(ctx context.Context, userID string, amount int64) error
	Refund(ctx context.Context, userID string, amount int64) error
	PayReward(ctx context.Context, userID string, amount int64) error
	Balance(ctx context.Context, userID string) (int64, error)
}

// Store persiste o roster inteiro a cada mutação. Sem save parcial.
type Store interface {
	SaveAll(ctx context.Context, snap Snapshot) error
}

// Directory resolve userID em nome de exibição. Implementações devem
// retornar um fallback (ex: o próprio userID) quando não conhecem o usuário.
type Directory interface {
	DisplayName(ctx context.Context, userID string) string
}

// Snapshot é o layout lógico persistido: roster completo + último id emitido.
// last_game_id vai junto pra ids nunca serem reusados após deleção.
type Snapshot struct {
	LastID int64
	Games  []GameSnapshot
}

// GameSnapshot faz round-trip de todos os campos de um jogo.
// Guesses na ordem de inserção (primeiro palpite de cada usuário).
type GameSnapshot struct {
	ID          int64
	CycloneTime time.Time
	CloseTime   time.Time
	Stage       Stage
	Observed    *float64
	Guesses     []GuessSnapshot
}

type GuessSnapshot struct {
	UserID  string
	Value   float64
	Wagered bool
}
