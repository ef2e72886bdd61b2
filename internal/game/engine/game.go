package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

const (
	// StakeCoins é a stake fixa por palpite apostado.
	StakeCoins int64 = 100

	// Limites de sanidade do palpite (hPa). Fora deles o palpite é aceito,
	// mas o usuário recebe um aviso.
	WarnPressureLow  = 960.0
	WarnPressureHigh = 1040.0
)

// Tabela de prêmios por colocação. Do 4º lugar em diante todo mundo
// ranqueado ganha o prêmio base.
var podiumRewards = [...]int64{1500, 1000, 500}

const baseReward int64 = 100

// Game é um único jogo BaroBets: os palpites de pressão mínima pra um ciclone,
// a máquina de estágios e a liquidação de prêmios.
//
// Um Game não se tranca sozinho: todos os comandos chegam serializados pelo
// Registry, que segura o lock enquanto o comando roda.
type Game struct {
	id          int64
	cycloneTime time.Time
	closeTime   time.Time
	stage       Stage
	observed    *float64

	guesses map[string]*Guess
	order   []string // ordem de inserção; desempate estável do ranking

	ledger Ledger
	now    func() time.Time
}

// ID retorna o id do jogo (atribuído uma vez, nunca reusado).
func (g *Game) ID() int64 { return g.id }

// CycloneTime é o instante do evento sobre o qual se aposta.
func (g *Game) CycloneTime() time.Time { return g.cycloneTime }

// CloseTime é o instante a partir do qual palpites param de ser aceitos.
func (g *Game) CloseTime() time.Time { return g.closeTime }

// Stage retorna o estágio atual, aplicando antes a transição automática
// Open→Closed por tempo.
func (g *Game) Stage() Stage {
	g.refreshStage()
	return g.stage
}

// Observed retorna a pressão observada, se já registrada.
func (g *Game) Observed() (float64, bool) {
	if g.observed == nil {
		return 0, false
	}
	return *g.observed, true
}

// refreshStage aplica a transição preguiçosa Open→Closed quando o horário de
// fechamento já passou. Não é timer: é recomputado a cada acesso.
func (g *Game) refreshStage() {
	if g.stage == StageOpen && g.now().After(g.closeTime) {
		g.stage = StageClosed
	}
}

// GuessingClosed reporta se novos palpites estão bloqueados.
func (g *Game) GuessingClosed() bool {
	g.refreshStage()
	switch g.stage {
	case StageClosed, StageFinished:
		return true
	}
	return false
}

// Close fecha o jogo antes da hora. Idempotente; não desfaz um jogo finalizado.
func (g *Game) Close() {
	if g.stage == StageFinished {
		return
	}
	g.stage = StageClosed
}

// ForceOpen reabre o jogo à força. Retorna false se o jogo já finalizou
// (finalizado não volta).
func (g *Game) ForceOpen() bool {
	if g.stage == StageFinished {
		return false
	}
	g.stage = StageForcedOpen
	return true
}

// SubmitGuess registra (ou substitui) o palpite de um usuário.
//
// A troca do estado de aposta é cobrança-XOR-estorno: exatamente um movimento
// de ledger por mudança, nunca os dois. Cobrança que falha por saldo deixa o
// palpite anterior intocado e retorna ErrInsufficientFunds com custo e saldo
// no outcome.
func (g *Game) SubmitGuess(ctx context.Context, userID string, pressure float64, wantsWager bool) (SubmitOutcome, error) {
	out := SubmitOutcome{GameID: g.id, UserID: userID}

	if g.GuessingClosed() {
		out.Closed = true
		return out, nil
	}

	prev, hadPrev := g.guesses[userID]
	prevWagered := hadPrev && prev.Wagered

	switch {
	case prevWagered && !wantsWager:
		// tinha aposta e removeu: estorna a stake
		if err := g.ledger.Refund(ctx, userID, StakeCoins); err != nil {
			return out, fmt.Errorf("refund stake: %w", err)
		}
		out.StakeRefunded = true
	case !prevWagered && wantsWager:
		// não tinha aposta e agora quer: cobra a stake
		if err := g.ledger.PayStake(ctx, userID, StakeCoins); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				out.Cost = StakeCoins
				if bal, berr := g.ledger.Balance(ctx, userID); berr == nil {
					out.Balance = bal
				}
				return out, ErrInsufficientFunds
			}
			return out, fmt.Errorf("charge stake: %w", err)
		}
		out.StakeCharged = true
	}
	// estado de aposta inalterado: nenhum movimento de ledger

	value := round1(pressure)
	out.Value = value

	if value < WarnPressureLow {
		out.Warning = WarnLow
	} else if value > WarnPressureHigh {
		out.Warning = WarnHigh
	}

	// aviso de valor duplicado (informativo, não bloqueia)
	for _, uid := range g.order {
		if uid == userID {
			continue
		}
		if g.guesses[uid].Value == value {
			out.DuplicateOf = uid
			break
		}
	}

	if !hadPrev {
		g.order = append(g.order, userID)
	}
	g.guesses[userID] = &Guess{UserID: userID, Value: value, Wagered: wantsWager}
	out.Accepted = true
	return out, nil
}

// Observe registra a pressão mínima observada. Só com o jogo fechado:
// aberto ainda aceita palpites, finalizado é tarde demais. Uma vez
// registrada, a observação é imutável.
func (g *Game) Observe(pressure float64) error {
	g.refreshStage()
	switch g.stage {
	case StageOpen, StageForcedOpen:
		return ErrInvalidStage
	case StageFinished:
		return ErrGameFinished
	}
	if g.observed != nil {
		return ErrAlreadyObserved
	}
	g.observed = &pressure
	return nil
}

// Rankings lista os userIDs do melhor pro pior palpite (erro absoluto
// ascendente). Empate fica na ordem de inserção (sort estável). Sem
// observação não há ranking.
func (g *Game) Rankings() []string {
	if g.observed == nil {
		return nil
	}
	obs := *g.observed
	ids := append([]string(nil), g.order...)
	sort.SliceStable(ids, func(i, j int) bool {
		return math.Abs(g.guesses[ids[i]].Value-obs) < math.Abs(g.guesses[ids[j]].Value-obs)
	})
	return ids
}

// Finish liquida o jogo: valida pré-condições, decide vencedores, paga
// prêmios via ledger e finaliza o estágio (sem volta).
//
// Caso degenerado: com mais de um palpite e todos estritamente acima (ou
// todos abaixo) do observado, ninguém ganha — as stakes ficam com a casa e o
// outcome informa a direção do erro coletivo.
func (g *Game) Finish(ctx context.Context) (FinishOutcome, error) {
	out := FinishOutcome{GameID: g.id}

	g.refreshStage()
	switch g.stage {
	case StageFinished:
		return out, ErrGameFinished
	case StageOpen, StageForcedOpen:
		return out, ErrInvalidStage
	}
	if len(g.order) == 0 {
		return out, ErrNoGuesses
	}
	if g.observed == nil {
		return out, ErrNoObservation
	}

	obs := *g.observed
	out.Observed = obs
	out.Participants = len(g.order)

	allHigh, allLow := true, true
	for _, uid := range g.order {
		v := g.guesses[uid].Value
		if v <= obs {
			allHigh = false
		}
		if v >= obs {
			allLow = false
		}
	}
	noWinner := len(g.order) > 1 && (allHigh || allLow)

	ranked := g.Rankings()
	for i, uid := range ranked {
		gu := g.guesses[uid]
		entry := RankedGuess{
			UserID:  uid,
			Value:   gu.Value,
			Error:   gu.ErrorVs(obs),
			Wagered: gu.Wagered,
		}
		// prêmio só pra quem pagou a stake, e só se houve vencedores
		if !noWinner && gu.Wagered {
			reward := rewardForRank(i)
			if err := g.ledger.PayReward(ctx, uid, reward); err != nil {
				return out, fmt.Errorf("pay reward to %s (rank %d): %w", uid, i+1, err)
			}
			entry.Reward = reward
		}
		out.Rankings = append(out.Rankings, entry)
	}

	if noWinner {
		out.NoWinner = true
		if allHigh {
			out.Direction = "high"
		} else {
			out.Direction = "low"
		}
	}

	g.stage = StageFinished
	return out, nil
}

// rewardForRank devolve o prêmio da colocação (0-based): 1500/1000/500 pro
// pódio, prêmio base flat pra todas as colocações seguintes.
func rewardForRank(rank int) int64 {
	if rank < len(podiumRewards) {
		return podiumRewards[rank]
	}
	return baseReward
}

// Average é a média aritmética dos palpites (board sem observação).
func (g *Game) Average() float64 {
	if len(g.order) == 0 {
		return 0
	}
	var sum float64
	for _, uid := range g.order {
		sum += g.guesses[uid].Value
	}
	return sum / float64(len(g.order))
}

// Board monta o contrato de dados do quadro de resultados. resolve traduz
// userID em nome de exibição.
func (g *Game) Board(resolve func(string) string) Board {
	g.refreshStage()
	b := Board{GameID: g.id, Final: g.stage == StageFinished}

	if g.observed == nil {
		b.Average = g.Average()
		ids := append([]string(nil), g.order...)
		sort.SliceStable(ids, func(i, j int) bool {
			return g.guesses[ids[i]].Value < g.guesses[ids[j]].Value
		})
		for _, uid := range ids {
			b.Entries = append(b.Entries, BoardEntry{
				UserID: uid,
				Name:   resolve(uid),
				Value:  g.guesses[uid].Value,
			})
		}
		return b
	}

	obs := *g.observed
	b.Observed = &obs
	for _, uid := range g.Rankings() {
		gu := g.guesses[uid]
		e := gu.ErrorVs(obs)
		b.Entries = append(b.Entries, BoardEntry{
			UserID: uid,
			Name:   resolve(uid),
			Value:  gu.Value,
			Error:  &e,
		})
	}
	return b
}

// snapshot exporta o estado completo do jogo pro roster persistido.
func (g *Game) snapshot() GameSnapshot {
	snap := GameSnapshot{
		ID:          g.id,
		CycloneTime: g.cycloneTime,
		CloseTime:   g.closeTime,
		Stage:       g.stage,
	}
	if g.observed != nil {
		obs := *g.observed
		snap.Observed = &obs
	}
	for _, uid := range g.order {
		gu := g.guesses[uid]
		snap.Guesses = append(snap.Guesses, GuessSnapshot{UserID: uid, Value: gu.Value, Wagered: gu.Wagered})
	}
	return snap
}
