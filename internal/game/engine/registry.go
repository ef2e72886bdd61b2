package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultCloseBefore é a antecedência default do fechamento: palpites fecham
// 2 dias antes do ciclone quando closeTime não vem explícito.
const defaultCloseBefore = 48 * time.Hour

// GameInfo é o resumo de um jogo pra listagem e respostas de criação.
type GameInfo struct {
	ID          int64
	CycloneTime time.Time
	CloseTime   time.Time
	Stage       Stage
	Observed    *float64
	GuessCount  int
}

// Registry é a borda do core: emite ids monotônicos, guarda o conjunto vivo
// de jogos e serializa todos os comandos com um único lock, de modo que
// transição de estágio, mutação de palpite e movimento de ledger sejam
// atômicos como unidade. A persistência roda estritamente depois dos
// invariantes em memória estarem finalizados.
type Registry struct {
	mu sync.Mutex

	log    *zap.Logger
	ledger Ledger
	store  Store
	dir    Directory
	now    func() time.Time

	games  map[int64]*Game
	lastID int64
}

// NewRegistry monta um registry vazio com os colaboradores injetados.
// nowFn é opcional (default time.Now); existe pra testes controlarem o relógio.
func NewRegistry(log *zap.Logger, ledger Ledger, store Store, dir Directory, nowFn func() time.Time) *Registry {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Registry{
		log:    log,
		ledger: ledger,
		store:  store,
		dir:    dir,
		now:    nowFn,
		games:  make(map[int64]*Game),
	}
}

// Restore reconstrói o roster a partir do snapshot persistido (startup).
func (r *Registry) Restore(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID = snap.LastID
	r.games = make(map[int64]*Game, len(snap.Games))
	for _, gs := range snap.Games {
		g := &Game{
			id:          gs.ID,
			cycloneTime: gs.CycloneTime,
			closeTime:   gs.CloseTime,
			stage:       gs.Stage,
			guesses:     make(map[string]*Guess, len(gs.Guesses)),
			ledger:      r.ledger,
			now:         r.now,
		}
		if !g.stage.Valid() {
			g.stage = StageClosed // roster corrompido não deve reabrir palpites
		}
		if gs.Observed != nil {
			obs := *gs.Observed
			g.observed = &obs
		}
		for _, gu := range gs.Guesses {
			g.order = append(g.order, gu.UserID)
			g.guesses[gu.UserID] = &Guess{UserID: gu.UserID, Value: gu.Value, Wagered: gu.Wagered}
		}
		r.games[gs.ID] = g
		if gs.ID > r.lastID {
			r.lastID = gs.ID
		}
	}
}

// CreateGame cria e registra um jogo novo. closeAt nil usa o default
// (cyclone − 2 dias). O id emitido é monotônico e nunca reusado.
func (r *Registry) CreateGame(ctx context.Context, cycloneTime time.Time, closeAt *time.Time) (GameInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	closeTime := cycloneTime.Add(-defaultCloseBefore)
	if closeAt != nil {
		closeTime = *closeAt
	}

	r.lastID++
	g := &Game{
		id:          r.lastID,
		cycloneTime: cycloneTime.UTC(),
		closeTime:   closeTime.UTC(),
		stage:       StageOpen,
		guesses:     make(map[string]*Guess),
		ledger:      r.ledger,
		now:         r.now,
	}
	r.games[g.id] = g

	if err := r.persistLocked(ctx); err != nil {
		return GameInfo{}, err
	}
	r.log.Info("game created",
		zap.Int64("gameId", g.id),
		zap.Time("cycloneTime", g.cycloneTime),
		zap.Time("closeTime", g.closeTime),
	)
	return r.infoLocked(g), nil
}

// SubmitGuess roda o intake de palpite pro jogo indicado.
// Rejeição por jogo fechado vem com o board atual anexado.
func (r *Registry) SubmitGuess(ctx context.Context, gameID int64, userID string, pressure float64, wantsWager bool) (SubmitOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.gameLocked(gameID)
	if err != nil {
		return SubmitOutcome{}, err
	}

	out, err := g.SubmitGuess(ctx, userID, pressure, wantsWager)
	if err != nil {
		return out, err
	}
	if out.Closed {
		b := g.Board(r.resolver(ctx))
		out.Board = &b
		return out, nil
	}
	if out.DuplicateOf != "" {
		out.DuplicateOfName = r.dir.DisplayName(ctx, out.DuplicateOf)
	}
	if err := r.persistLocked(ctx); err != nil {
		return out, err
	}
	return out, nil
}

// CloseGame fecha o jogo antes da hora (idempotente).
func (r *Registry) CloseGame(ctx context.Context, gameID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.gameLocked(gameID)
	if err != nil {
		return err
	}
	g.Close()
	return r.persistLocked(ctx)
}

// ForceOpen reabre o jogo à força. false se já finalizado.
func (r *Registry) ForceOpen(ctx context.Context, gameID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.gameLocked(gameID)
	if err != nil {
		return false, err
	}
	ok := g.ForceOpen()
	if !ok {
		return false, nil
	}
	return true, r.persistLocked(ctx)
}

// Observe registra a pressão mínima observada do evento.
func (r *Registry) Observe(ctx context.Context, gameID int64, pressure float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.gameLocked(gameID)
	if err != nil {
		return err
	}
	if err := g.Observe(pressure); err != nil {
		return err
	}
	r.log.Info("pressure observed", zap.Int64("gameId", gameID), zap.Float64("pressure", pressure))
	return r.persistLocked(ctx)
}

// FinishGame distribui os prêmios e finaliza o jogo. O board final vai no outcome.
func (r *Registry) FinishGame(ctx context.Context, gameID int64) (FinishOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.gameLocked(gameID)
	if err != nil {
		return FinishOutcome{}, err
	}

	out, err := g.Finish(ctx)
	if err != nil {
		return out, err
	}
	resolve := r.resolver(ctx)
	for i := range out.Rankings {
		out.Rankings[i].Name = resolve(out.Rankings[i].UserID)
	}
	b := g.Board(resolve)
	out.Board = &b

	if err := r.persistLocked(ctx); err != nil {
		return out, err
	}
	r.log.Info("game finished",
		zap.Int64("gameId", gameID),
		zap.Bool("noWinner", out.NoWinner),
		zap.Int("participants", out.Participants),
	)
	return out, nil
}

// Board monta o quadro de resultados atual do jogo.
func (r *Registry) Board(ctx context.Context, gameID int64) (Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.gameLocked(gameID)
	if err != nil {
		return Board{}, err
	}
	return g.Board(r.resolver(ctx)), nil
}

// DeleteGame remove o jogo do roster. Sem soft-delete; o id não volta ao pool.
func (r *Registry) DeleteGame(ctx context.Context, gameID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[gameID]; !ok {
		return fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	delete(r.games, gameID)
	if err := r.persistLocked(ctx); err != nil {
		return err
	}
	r.log.Info("game deleted", zap.Int64("gameId", gameID))
	return nil
}

// Info retorna o resumo de um jogo.
func (r *Registry) Info(gameID int64) (GameInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, err := r.gameLocked(gameID)
	if err != nil {
		return GameInfo{}, err
	}
	return r.infoLocked(g), nil
}

// LatestID retorna o maior id vivo (alias "latest" da API).
func (r *Registry) LatestID() (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var latest int64
	for id := range r.games {
		if id > latest {
			latest = id
		}
	}
	return latest, latest != 0
}

// List resume o roster vivo, ordenado por id.
func (r *Registry) List() []GameInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]GameInfo, 0, len(r.games))
	for id := int64(1); id <= r.lastID; id++ {
		if g, ok := r.games[id]; ok {
			infos = append(infos, r.infoLocked(g))
		}
	}
	return infos
}

func (r *Registry) gameLocked(gameID int64) (*Game, error) {
	g, ok := r.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrGameNotFound, gameID)
	}
	return g, nil
}

func (r *Registry) infoLocked(g *Game) GameInfo {
	info := GameInfo{
		ID:          g.id,
		CycloneTime: g.cycloneTime,
		CloseTime:   g.closeTime,
		Stage:       g.Stage(),
		GuessCount:  len(g.order),
	}
	if g.observed != nil {
		obs := *g.observed
		info.Observed = &obs
	}
	return info
}

func (r *Registry) resolver(ctx context.Context) func(string) string {
	return func(userID string) string {
		return r.dir.DisplayName(ctx, userID)
	}
}

// persistLocked salva o roster inteiro. Chamado com o lock em mãos, sempre
// depois das mutações em memória do comando corrente.
func (r *Registry) persistLocked(ctx context.Context) error {
	snap := Snapshot{LastID: r.lastID, Games: make([]GameSnapshot, 0, len(r.games))}
	for id := int64(1); id <= r.lastID; id++ {
		if g, ok := r.games[id]; ok {
			snap.Games = append(snap.Games, g.snapshot())
		}
	}
	if err := r.store.SaveAll(ctx, snap); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	return nil
}
