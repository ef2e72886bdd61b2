package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeLedger implementa Ledger em memória pros testes do engine.
type fakeLedger struct {
	balances map[string]int64
	failAll  bool
	moves    []string // trilha "charge:u1:100", "refund:u1:100", "reward:u1:1500"
}

func newFakeLedger(balances map[string]int64) *fakeLedger {
	if balances == nil {
		balances = make(map[string]int64)
	}
	return &fakeLedger{balances: balances}
}

func (f *fakeLedger) PayStake(_ context.Context, userID string, amount int64) error {
	if f.failAll {
		return errors.New("ledger down")
	}
	if f.balances[userID] < amount {
		return ErrInsufficientFunds
	}
	f.balances[userID] -= amount
	f.moves = append(f.moves, fmt.Sprintf("charge:%s:%d", userID, amount))
	return nil
}

func (f *fakeLedger) Refund(_ context.Context, userID string, amount int64) error {
	if f.failAll {
		return errors.New("ledger down")
	}
	f.balances[userID] += amount
	f.moves = append(f.moves, fmt.Sprintf("refund:%s:%d", userID, amount))
	return nil
}

func (f *fakeLedger) PayReward(_ context.Context, userID string, amount int64) error {
	if f.failAll {
		return errors.New("ledger down")
	}
	f.balances[userID] += amount
	f.moves = append(f.moves, fmt.Sprintf("reward:%s:%d", userID, amount))
	return nil
}

func (f *fakeLedger) Balance(_ context.Context, userID string) (int64, error) {
	return f.balances[userID], nil
}

// fakeStore guarda o último snapshot salvo e conta saves.
type fakeStore struct {
	saves int
	last  Snapshot
}

func (f *fakeStore) SaveAll(_ context.Context, snap Snapshot) error {
	f.saves++
	f.last = snap
	return nil
}

type fakeDirectory struct{ names map[string]string }

func (f *fakeDirectory) DisplayName(_ context.Context, userID string) string {
	if n, ok := f.names[userID]; ok {
		return n
	}
	return userID
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestRegistry(balances map[string]int64) (*Registry, *fakeLedger, *fakeStore, *testClock) {
	ledger := newFakeLedger(balances)
	store := &fakeStore{}
	dir := &fakeDirectory{names: map[string]string{}}
	clock := &testClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	reg := NewRegistry(zap.NewNop(), ledger, store, dir, clock.now)
	return reg, ledger, store, clock
}

// cria um jogo cujo fechamento ainda está no futuro do relógio de teste
func mustCreateGame(t *testing.T, reg *Registry, clock *testClock) GameInfo {
	t.Helper()
	info, err := reg.CreateGame(context.Background(), clock.t.Add(96*time.Hour), nil)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return info
}

func TestCreateGameDefaultsCloseTime(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	cyclone := clock.t.Add(96 * time.Hour)

	info, err := reg.CreateGame(context.Background(), cyclone, nil)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	want := cyclone.Add(-48 * time.Hour)
	if !info.CloseTime.Equal(want) {
		t.Errorf("close time = %v, want %v", info.CloseTime, want)
	}
	if info.Stage != StageOpen {
		t.Errorf("stage = %s, want %s", info.Stage, StageOpen)
	}
}

func TestCreateGameExplicitCloseTime(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	cyclone := clock.t.Add(96 * time.Hour)
	closeAt := clock.t.Add(12 * time.Hour)

	info, err := reg.CreateGame(context.Background(), cyclone, &closeAt)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if !info.CloseTime.Equal(closeAt) {
		t.Errorf("close time = %v, want %v", info.CloseTime, closeAt)
	}
}

func TestStageAutoClosesPastCloseTime(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)

	// antes do fechamento, segue aceitando
	out, err := reg.SubmitGuess(context.Background(), info.ID, "u1", 1000.0, false)
	if err != nil || !out.Accepted {
		t.Fatalf("guess before close: out=%+v err=%v", out, err)
	}

	// passou do closeTime: transição preguiçosa Open→Closed no próximo acesso
	clock.t = info.CloseTime.Add(time.Minute)
	out, err = reg.SubmitGuess(context.Background(), info.ID, "u2", 1001.0, false)
	if err != nil {
		t.Fatalf("guess after close: %v", err)
	}
	if out.Accepted || !out.Closed {
		t.Errorf("out = %+v, want rejected with Closed", out)
	}
	if out.Board == nil {
		t.Error("closed rejection should carry the current board")
	}
}

func TestForcedOpenAcceptsPastCloseTime(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	clock.t = info.CloseTime.Add(time.Hour)

	ok, err := reg.ForceOpen(context.Background(), info.ID)
	if err != nil || !ok {
		t.Fatalf("force open: ok=%v err=%v", ok, err)
	}

	out, err := reg.SubmitGuess(context.Background(), info.ID, "u1", 1000.0, false)
	if err != nil || !out.Accepted {
		t.Errorf("forced-open game should accept guesses: out=%+v err=%v", out, err)
	}
}

func TestFinishedIsTerminal(t *testing.T) {
	reg, _, _, clock := newTestRegistry(map[string]int64{"u1": 1000})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	if _, err := reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, false); err != nil {
		t.Fatalf("guess: %v", err)
	}
	if err := reg.CloseGame(ctx, info.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := reg.Observe(ctx, info.ID, 998.0); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if _, err := reg.FinishGame(ctx, info.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}

	// finalizado não reabre, não refecha, não refinaliza
	ok, err := reg.ForceOpen(ctx, info.ID)
	if err != nil || ok {
		t.Errorf("force open after finish: ok=%v err=%v, want false", ok, err)
	}
	if err := reg.CloseGame(ctx, info.ID); err != nil {
		t.Errorf("close after finish should be a no-op: %v", err)
	}
	if _, err := reg.FinishGame(ctx, info.ID); !errors.Is(err, ErrGameFinished) {
		t.Errorf("second finish err = %v, want ErrGameFinished", err)
	}
	if err := reg.Observe(ctx, info.ID, 990.0); !errors.Is(err, ErrGameFinished) {
		t.Errorf("observe after finish err = %v, want ErrGameFinished", err)
	}
}

func TestSubmitGuessRoundsToOneDecimal(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)

	out, err := reg.SubmitGuess(context.Background(), info.ID, "u1", 1013.26, false)
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if out.Value != 1013.3 {
		t.Errorf("value = %v, want 1013.3", out.Value)
	}
}

func TestSubmitGuessSanityWarnings(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	out, _ := reg.SubmitGuess(ctx, info.ID, "u1", 950.0, false)
	if !out.Accepted || out.Warning != WarnLow {
		t.Errorf("low guess: accepted=%v warning=%q, want accepted with %q", out.Accepted, out.Warning, WarnLow)
	}
	out, _ = reg.SubmitGuess(ctx, info.ID, "u2", 1050.0, false)
	if !out.Accepted || out.Warning != WarnHigh {
		t.Errorf("high guess: accepted=%v warning=%q, want accepted with %q", out.Accepted, out.Warning, WarnHigh)
	}
	out, _ = reg.SubmitGuess(ctx, info.ID, "u3", 1000.0, false)
	if out.Warning != WarnNone {
		t.Errorf("normal guess warning = %q, want none", out.Warning)
	}
}

func TestDuplicateValueIsInformationalOnly(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	if _, err := reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, false); err != nil {
		t.Fatalf("first guess: %v", err)
	}
	out, err := reg.SubmitGuess(ctx, info.ID, "u2", 1000.04, false) // arredonda pro mesmo valor
	if err != nil {
		t.Fatalf("duplicate guess: %v", err)
	}
	if !out.Accepted {
		t.Error("duplicate value must still be accepted")
	}
	if out.DuplicateOf != "u1" {
		t.Errorf("duplicateOf = %q, want u1", out.DuplicateOf)
	}

	// repetir o próprio valor não é duplicata de outro usuário
	out, _ = reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, false)
	if out.DuplicateOf != "" {
		t.Errorf("own resubmission flagged as duplicate of %q", out.DuplicateOf)
	}
}

func TestLastGuessPerUserWins(t *testing.T) {
	reg, _, store, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, false)
	reg.SubmitGuess(ctx, info.ID, "u1", 1005.0, false)
	reg.SubmitGuess(ctx, info.ID, "u1", 1010.0, false)

	games := store.last.Games
	if len(games) != 1 || len(games[0].Guesses) != 1 {
		t.Fatalf("roster = %+v, want 1 game with 1 guess", games)
	}
	if got := games[0].Guesses[0].Value; got != 1010.0 {
		t.Errorf("stored value = %v, want 1010.0 (last write wins)", got)
	}
}

func TestWagerChargeRefundToggle(t *testing.T) {
	reg, ledger, _, clock := newTestRegistry(map[string]int64{"u1": 100})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	// aposta: cobra a stake
	out, err := reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, true)
	if err != nil || !out.StakeCharged {
		t.Fatalf("wagered guess: out=%+v err=%v", out, err)
	}
	if ledger.balances["u1"] != 0 {
		t.Errorf("balance after charge = %d, want 0", ledger.balances["u1"])
	}

	// mantém a aposta: nenhum movimento
	out, _ = reg.SubmitGuess(ctx, info.ID, "u1", 1001.0, true)
	if out.StakeCharged || out.StakeRefunded {
		t.Errorf("unchanged wager moved the ledger: %+v", out)
	}

	// remove a aposta: estorna
	out, _ = reg.SubmitGuess(ctx, info.ID, "u1", 1002.0, false)
	if !out.StakeRefunded {
		t.Errorf("removing wager should refund: %+v", out)
	}
	if ledger.balances["u1"] != 100 {
		t.Errorf("balance after refund = %d, want 100", ledger.balances["u1"])
	}

	// reenvio idêntico sem aposta: sem estorno duplo
	out, _ = reg.SubmitGuess(ctx, info.ID, "u1", 1002.0, false)
	if out.StakeRefunded {
		t.Error("second unwagered resubmission must not refund again")
	}
	if ledger.balances["u1"] != 100 {
		t.Errorf("balance = %d, want 100", ledger.balances["u1"])
	}
}

func TestInsufficientFundsLeavesPreviousGuessUntouched(t *testing.T) {
	reg, ledger, store, clock := newTestRegistry(map[string]int64{"u1": 30})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	if _, err := reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, false); err != nil {
		t.Fatalf("unwagered guess: %v", err)
	}
	savesBefore := store.saves

	out, err := reg.SubmitGuess(ctx, info.ID, "u1", 980.0, true)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if out.Cost != StakeCoins || out.Balance != 30 {
		t.Errorf("outcome cost/balance = %d/%d, want %d/30", out.Cost, out.Balance, StakeCoins)
	}
	if ledger.balances["u1"] != 30 {
		t.Errorf("balance mutated to %d on failed charge", ledger.balances["u1"])
	}
	// palpite anterior intocado: valor e flag
	g := store.last.Games[0].Guesses[0]
	if g.Value != 1000.0 || g.Wagered {
		t.Errorf("previous guess mutated: %+v", g)
	}
	if store.saves != savesBefore {
		t.Errorf("failed charge persisted the roster (%d saves, was %d)", store.saves, savesBefore)
	}
}

func TestObserveRequiresClosedStage(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	if err := reg.Observe(ctx, info.ID, 990.0); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("observe on open game err = %v, want ErrInvalidStage", err)
	}

	reg.ForceOpen(ctx, info.ID)
	if err := reg.Observe(ctx, info.ID, 990.0); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("observe on forced-open game err = %v, want ErrInvalidStage", err)
	}

	reg.CloseGame(ctx, info.ID)
	if err := reg.Observe(ctx, info.ID, 990.0); err != nil {
		t.Fatalf("observe on closed game: %v", err)
	}

	// imutável depois de registrada
	if err := reg.Observe(ctx, info.ID, 985.0); !errors.Is(err, ErrAlreadyObserved) {
		t.Errorf("second observe err = %v, want ErrAlreadyObserved", err)
	}
}

func TestRankingsAscendingAbsoluteError(t *testing.T) {
	reg, _, _, clock := newTestRegistry(map[string]int64{"a": 100, "b": 100, "c": 100})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "a", 1005.0, false)
	reg.SubmitGuess(ctx, info.ID, "b", 1012.0, false)
	reg.SubmitGuess(ctx, info.ID, "c", 1020.0, false)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1010.0)

	board, err := reg.Board(ctx, info.ID)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	want := []string{"b", "a", "c"} // erros 2, 5, 10
	for i, e := range board.Entries {
		if e.UserID != want[i] {
			t.Errorf("rank %d = %s, want %s", i+1, e.UserID, want[i])
		}
	}
}

func TestRankingsTieStableByInsertionOrder(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	// mesmo erro absoluto (±5): quem palpitou primeiro fica na frente
	reg.SubmitGuess(ctx, info.ID, "early", 1015.0, false)
	reg.SubmitGuess(ctx, info.ID, "late", 1005.0, false)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1010.0)

	board, _ := reg.Board(ctx, info.ID)
	if board.Entries[0].UserID != "early" || board.Entries[1].UserID != "late" {
		t.Errorf("tie order = [%s %s], want [early late]", board.Entries[0].UserID, board.Entries[1].UserID)
	}
}

func TestFinishPreconditions(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	// aberto: estágio errado
	if _, err := reg.FinishGame(ctx, info.ID); !errors.Is(err, ErrInvalidStage) {
		t.Errorf("finish open game err = %v, want ErrInvalidStage", err)
	}

	// fechado sem palpites
	reg.CloseGame(ctx, info.ID)
	if _, err := reg.FinishGame(ctx, info.ID); !errors.Is(err, ErrNoGuesses) {
		t.Errorf("finish without guesses err = %v, want ErrNoGuesses", err)
	}

	// com palpite mas sem observação
	reg.ForceOpen(ctx, info.ID)
	reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, false)
	reg.CloseGame(ctx, info.ID)
	if _, err := reg.FinishGame(ctx, info.ID); !errors.Is(err, ErrNoObservation) {
		t.Errorf("finish without observation err = %v, want ErrNoObservation", err)
	}
}

func TestFinishPodiumRewardsWageredOnly(t *testing.T) {
	reg, ledger, _, clock := newTestRegistry(map[string]int64{"a": 100, "b": 100, "c": 100})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "a", 1005.0, true)
	reg.SubmitGuess(ctx, info.ID, "b", 1012.0, true)
	reg.SubmitGuess(ctx, info.ID, "c", 1020.0, true)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1010.0)

	out, err := reg.FinishGame(ctx, info.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if out.NoWinner {
		t.Fatal("unexpected no-winner outcome")
	}
	if out.Participants != 3 {
		t.Errorf("participants = %d, want 3", out.Participants)
	}

	wantOrder := []string{"b", "a", "c"}
	wantReward := []int64{1500, 1000, 500}
	for i, r := range out.Rankings {
		if r.UserID != wantOrder[i] || r.Reward != wantReward[i] {
			t.Errorf("rank %d = %s/%d, want %s/%d", i+1, r.UserID, r.Reward, wantOrder[i], wantReward[i])
		}
	}
	// stakes de 100 já cobradas; saldo = prêmio
	if ledger.balances["b"] != 1500 || ledger.balances["a"] != 1000 || ledger.balances["c"] != 500 {
		t.Errorf("balances = %+v, want b=1500 a=1000 c=500", ledger.balances)
	}
}

func TestFinishFlatRewardPastPodium(t *testing.T) {
	reg, ledger, _, clock := newTestRegistry(map[string]int64{
		"a": 100, "b": 100, "c": 100, "d": 100, "e": 100,
	})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "a", 1010.0, true)
	reg.SubmitGuess(ctx, info.ID, "b", 1012.0, true)
	reg.SubmitGuess(ctx, info.ID, "c", 1015.0, true)
	reg.SubmitGuess(ctx, info.ID, "d", 1020.0, true)
	reg.SubmitGuess(ctx, info.ID, "e", 1025.0, true)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1010.0)

	out, err := reg.FinishGame(ctx, info.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got := out.Rankings[3].Reward; got != 100 {
		t.Errorf("4th place reward = %d, want flat 100", got)
	}
	if got := out.Rankings[4].Reward; got != 100 {
		t.Errorf("5th place reward = %d, want flat 100", got)
	}
	if ledger.balances["d"] != 100 || ledger.balances["e"] != 100 {
		t.Errorf("balances past podium = d:%d e:%d, want 100/100", ledger.balances["d"], ledger.balances["e"])
	}
}

func TestFinishSoleUnwageredWinnerPaysNothing(t *testing.T) {
	reg, ledger, _, clock := newTestRegistry(map[string]int64{"u1": 0})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "u1", 1013.2, false)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1010.0)

	out, err := reg.FinishGame(ctx, info.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if out.NoWinner {
		t.Error("single guess must never hit the no-winner branch")
	}
	if out.Participants != 1 {
		t.Errorf("participants = %d, want 1", out.Participants)
	}
	if out.Rankings[0].UserID != "u1" || out.Rankings[0].Reward != 0 {
		t.Errorf("sole winner = %+v, want u1 with reward 0 (unwagered)", out.Rankings[0])
	}
	if ledger.balances["u1"] != 0 {
		t.Errorf("balance = %d, want 0 (nothing paid)", ledger.balances["u1"])
	}
}

func TestFinishAllTooHighNoWinner(t *testing.T) {
	reg, ledger, _, clock := newTestRegistry(map[string]int64{"a": 100, "b": 100})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "a", 1045.0, true)
	reg.SubmitGuess(ctx, info.ID, "b", 1050.0, true)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1000.0)

	out, err := reg.FinishGame(ctx, info.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !out.NoWinner || out.Direction != "high" {
		t.Errorf("outcome = noWinner:%v direction:%q, want no winner too high", out.NoWinner, out.Direction)
	}
	// stakes ficam com a casa, nada é pago
	if ledger.balances["a"] != 0 || ledger.balances["b"] != 0 {
		t.Errorf("balances = %+v, want both 0", ledger.balances)
	}
	for _, r := range out.Rankings {
		if r.Reward != 0 {
			t.Errorf("reward for %s = %d, want 0", r.UserID, r.Reward)
		}
	}
}

func TestFinishAllTooLowNoWinner(t *testing.T) {
	reg, _, _, clock := newTestRegistry(map[string]int64{"a": 100, "b": 100})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "a", 960.0, true)
	reg.SubmitGuess(ctx, info.ID, "b", 970.0, true)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1000.0)

	out, err := reg.FinishGame(ctx, info.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if !out.NoWinner || out.Direction != "low" {
		t.Errorf("outcome = noWinner:%v direction:%q, want no winner too low", out.NoWinner, out.Direction)
	}
}

func TestFinishExactHitIsNotDegenerate(t *testing.T) {
	reg, ledger, _, clock := newTestRegistry(map[string]int64{"a": 100, "b": 100})
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	// "a" acerta em cheio; "b" acima. Não é caso todos-acima.
	reg.SubmitGuess(ctx, info.ID, "a", 1000.0, true)
	reg.SubmitGuess(ctx, info.ID, "b", 1010.0, true)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1000.0)

	out, err := reg.FinishGame(ctx, info.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if out.NoWinner {
		t.Error("exact hit must not trigger the no-winner branch")
	}
	if ledger.balances["a"] != 1500 {
		t.Errorf("winner balance = %d, want 1500", ledger.balances["a"])
	}
}

func TestBoardWithoutObservation(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "u1", 1010.0, false)
	reg.SubmitGuess(ctx, info.ID, "u2", 1000.0, false)
	reg.SubmitGuess(ctx, info.ID, "u3", 1005.0, false)

	board, err := reg.Board(ctx, info.ID)
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	if board.Observed != nil || board.Final {
		t.Errorf("board = %+v, want no observation and not final", board)
	}
	if board.Average != 1005.0 {
		t.Errorf("average = %v, want 1005.0", board.Average)
	}
	// ascendente por valor
	want := []float64{1000.0, 1005.0, 1010.0}
	for i, e := range board.Entries {
		if e.Value != want[i] {
			t.Errorf("entry %d value = %v, want %v", i, e.Value, want[i])
		}
		if e.Error != nil {
			t.Errorf("entry %d has error without observation", i)
		}
	}
}

func TestBoardWithObservationShowsSignedErrors(t *testing.T) {
	reg, _, _, clock := newTestRegistry(nil)
	info := mustCreateGame(t, reg, clock)
	ctx := context.Background()

	reg.SubmitGuess(ctx, info.ID, "u1", 1012.0, false)
	reg.SubmitGuess(ctx, info.ID, "u2", 1005.0, false)
	reg.CloseGame(ctx, info.ID)
	reg.Observe(ctx, info.ID, 1010.0)

	board, _ := reg.Board(ctx, info.ID)
	if board.Observed == nil || *board.Observed != 1010.0 {
		t.Fatalf("board observed = %v, want 1010.0", board.Observed)
	}
	if board.Final {
		t.Error("board should be current (not final) before finish")
	}
	if board.Entries[0].UserID != "u1" {
		t.Errorf("best guess = %s, want u1 (error 2 vs 5)", board.Entries[0].UserID)
	}
	if e := board.Entries[0].Error; e == nil || *e != 2.0 {
		t.Errorf("signed error = %v, want +2.0", e)
	}
	if e := board.Entries[1].Error; e == nil || *e != -5.0 {
		t.Errorf("signed error = %v, want -5.0", e)
	}

	// depois de finalizar, o board vira final
	reg.FinishGame(ctx, info.ID)
	board, _ = reg.Board(ctx, info.ID)
	if !board.Final {
		t.Error("board should be final after finish")
	}
}

func TestBoardResolvesDisplayNames(t *testing.T) {
	ledger := newFakeLedger(nil)
	store := &fakeStore{}
	dir := &fakeDirectory{names: map[string]string{"u1": "Alice"}}
	clock := &testClock{t: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	reg := NewRegistry(zap.NewNop(), ledger, store, dir, clock.now)
	ctx := context.Background()

	info, err := reg.CreateGame(ctx, clock.t.Add(96*time.Hour), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	reg.SubmitGuess(ctx, info.ID, "u1", 1000.0, false)
	reg.SubmitGuess(ctx, info.ID, "u2", 1001.0, false)

	board, _ := reg.Board(ctx, info.ID)
	if board.Entries[0].Name != "Alice" {
		t.Errorf("name = %q, want Alice", board.Entries[0].Name)
	}
	if board.Entries[1].Name != "u2" {
		t.Errorf("unknown user name = %q, want fallback u2", board.Entries[1].Name)
	}
}
