package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implementa operações de carteira de moedas em banco
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// GetOrCreateWallet retorna o walletId e saldo de um usuário, criando a carteira se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	id, bal, err := getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// getOrCreateTx localiza (ou cria zerada) a carteira do usuário dentro da transação corrente
func getOrCreateTx(ctx context.Context, tx *sql.Tx, userID string) (walletID string, balance int64, err error) {
	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_coins FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		id = uuid.New().String()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_coins, version) VALUES($1,$2,0,1)`,
			id, userID); err != nil {
			return "", 0, err
		}
		bal = 0
	} else if err != nil {
		return "", 0, err
	}
	return id, bal, nil
}

// Deposit incrementa o saldo da carteira e registra a operação no ledger
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, reason string) (walletID string, newBalance int64, err error) {
	return p.credit(ctx, userID, amount, "DEPOSIT", reason)
}

// Credit devolve moedas pra carteira (estorno de stake, prêmio de jogo)
// Cria a carteira se necessário: um prêmio nunca pode se perder por carteira ausente
func (p *Postgres) Credit(ctx context.Context, userID string, amount int64, reason string) (walletID string, newBalance int64, err error) {
	return p.credit(ctx, userID, amount, "CREDIT", reason)
}

func (p *Postgres) credit(ctx context.Context, userID string, amount int64, opType, reason string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	id, bal, err := getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_coins = balance_coins + $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_coins, description) VALUES($1,$2,$3,$4)`,
		id, opType, amount, reason); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, bal + amount, nil
}

// Charge debita moedas da carteira (cobrança de stake do BaroBets)
// Lock pessimista na linha; saldo insuficiente retorna ErrInsufficientFunds
// com o saldo corrente, sem mutação nenhuma
func (p *Postgres) Charge(ctx context.Context, userID string, amount int64, reason string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	id, bal, err := getOrCreateTx(ctx, tx, userID)
	if err != nil {
		return "", 0, err
	}

	if bal < amount {
		// commit de propósito: a carteira recém-criada (saldo 0) deve persistir
		if err = tx.Commit(); err != nil {
			return "", 0, err
		}
		return id, bal, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_coins = balance_coins - $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_coins, description) VALUES($1,'CHARGE',$2,$3)`,
		id, amount, reason); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, bal - amount, nil
}
