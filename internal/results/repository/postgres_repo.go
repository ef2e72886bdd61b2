package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/barobets-game-poc/pkg/contracts/events"
)

// PostgresRepo persiste o histórico de resultados de jogos finalizados
// DB: conexão com o banco de dados
type PostgresRepo struct {
	DB *sql.DB
}

// NewPostgresRepo retorna uma instância de repositório Postgres
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertSummary insere ou atualiza o resumo do jogo finalizado
// ON CONFLICT cobre reprocessamento do evento (consumer at-least-once)
func (r *PostgresRepo) UpsertSummary(ctx context.Context, e events.GameFinished) error {
	const q = `
		INSERT INTO barobet_result_summaries
		  (game_id, observed, no_winner, direction, participants, finished_at)
		VALUES
		  ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (game_id) DO UPDATE SET
		  observed     = EXCLUDED.observed,
		  no_winner    = EXCLUDED.no_winner,
		  direction    = EXCLUDED.direction,
		  participants = EXCLUDED.participants,
		  finished_at  = EXCLUDED.finished_at
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.GameID, e.Observed, e.NoWinner, e.Direction, len(e.Rankings), e.Ts,
	)
	return err
}

// InsertEntries grava uma linha de histórico por colocação do ranking final
// Apaga as linhas do jogo antes de reinserir (idempotente por game_id)
func (r *PostgresRepo) InsertEntries(ctx context.Context, e events.GameFinished) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM barobet_results WHERE game_id=$1`, e.GameID); err != nil {
		return err
	}
	for i, rk := range e.Rankings {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO barobet_results
			  (game_id, rank, user_id, value, error, wagered, reward)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			e.GameID, i+1, rk.UserID, rk.Value, rk.Error, rk.Wagered, rk.Reward); err != nil {
			return err
		}
	}
	return tx.Commit()
}
