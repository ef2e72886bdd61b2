package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/barobets-game-poc/internal/game/engine"
)

// Postgres persiste o roster de jogos BaroBets. Implementa engine.Store.
//
// O save é sempre do roster inteiro, numa transação só (um snapshot global a
// cada mutação): leitura nunca vê jogo pela metade.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// SaveAll substitui o roster persistido pelo snapshot corrente.
func (p *Postgres) SaveAll(ctx context.Context, snap engine.Snapshot) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// last_game_id vive fora das linhas de jogo pra sobreviver à deleção do jogo mais novo
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO barobet_meta(id, last_game_id) VALUES(1, $1)
		ON CONFLICT (id) DO UPDATE SET last_game_id = EXCLUDED.last_game_id`,
		snap.LastID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM barobet_guesses`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM barobet_games`); err != nil {
		return err
	}

	for _, g := range snap.Games {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO barobet_games(id, cyclone_time, close_time, stage, observed)
			VALUES($1,$2,$3,$4,$5)`,
			g.ID, g.CycloneTime, g.CloseTime, string(g.Stage), g.Observed); err != nil {
			return fmt.Errorf("save game %d: %w", g.ID, err)
		}
		for pos, gu := range g.Guesses {
			if _, err = tx.ExecContext(ctx, `
				INSERT INTO barobet_guesses(game_id, user_id, position, value, wagered)
				VALUES($1,$2,$3,$4,$5)`,
				g.ID, gu.UserID, pos, gu.Value, gu.Wagered); err != nil {
				return fmt.Errorf("save guess %d/%s: %w", g.ID, gu.UserID, err)
			}
		}
	}

	return tx.Commit()
}

// LoadAll reconstrói o snapshot do roster (startup do game-service).
// A ordem de inserção dos palpites vem da coluna position.
func (p *Postgres) LoadAll(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot

	err := p.db.QueryRowContext(ctx, `SELECT last_game_id FROM barobet_meta WHERE id = 1`).Scan(&snap.LastID)
	if err != nil && err != sql.ErrNoRows {
		return snap, fmt.Errorf("load meta: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, cyclone_time, close_time, stage, observed
		FROM barobet_games ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("load games: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*engine.GameSnapshot)
	for rows.Next() {
		var g engine.GameSnapshot
		var stage string
		if err := rows.Scan(&g.ID, &g.CycloneTime, &g.CloseTime, &stage, &g.Observed); err != nil {
			return snap, err
		}
		g.Stage = engine.Stage(stage)
		snap.Games = append(snap.Games, g)
		byID[g.ID] = &snap.Games[len(snap.Games)-1]
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	grows, err := p.db.QueryContext(ctx, `
		SELECT game_id, user_id, value, wagered
		FROM barobet_guesses ORDER BY game_id, position`)
	if err != nil {
		return snap, fmt.Errorf("load guesses: %w", err)
	}
	defer grows.Close()

	for grows.Next() {
		var gameID int64
		var gu engine.GuessSnapshot
		if err := grows.Scan(&gameID, &gu.UserID, &gu.Value, &gu.Wagered); err != nil {
			return snap, err
		}
		if g, ok := byID[gameID]; ok {
			g.Guesses = append(g.Guesses, gu)
		}
	}
	return snap, grows.Err()
}
