package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radieske/barobets-game-poc/internal/game/engine"
	walletdto "github.com/radieske/barobets-game-poc/internal/game/wallet/dto"
)

func TestPayStakeMapsConflictToInsufficientFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallet/charge" {
			t.Errorf("path = %s, want /wallet/charge", r.URL.Path)
		}
		var req walletdto.ChargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.UserID != "u1" || req.AmountCoins != 100 || req.Reason != "barobets-stake" {
			t.Errorf("unexpected charge request: %+v", req)
		}
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.PayStake(context.Background(), "u1", 100)
	if !errors.Is(err, engine.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}

func TestCreditReasonsPerOperation(t *testing.T) {
	var reasons []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req walletdto.CreditRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		reasons = append(reasons, req.Reason)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Refund(context.Background(), "u1", 100); err != nil {
		t.Fatalf("refund: %v", err)
	}
	if err := c.PayReward(context.Background(), "u1", 1500); err != nil {
		t.Fatalf("reward: %v", err)
	}
	if len(reasons) != 2 || reasons[0] != "barobets-stake-refund" || reasons[1] != "barobets-reward" {
		t.Errorf("reasons = %v", reasons)
	}
}

func TestBalanceRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("userId"); got != "u1" {
			t.Errorf("userId = %q, want u1", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(walletdto.BalanceResponse{UserID: "u1", BalanceCoins: 420})
	}))
	defer srv.Close()

	c := New(srv.URL)
	bal, err := c.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if bal != 420 {
		t.Errorf("balance = %d, want 420", bal)
	}
}

func TestServerErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.PayStake(context.Background(), "u1", 100); err == nil {
		t.Errorf("expected error on http 500 charge")
	}
	if err := c.Refund(context.Background(), "u1", 100); err == nil {
		t.Errorf("expected error on http 500 credit")
	}
	if _, err := c.Balance(context.Background(), "u1"); err == nil {
		t.Errorf("expected error on http 500 balance")
	}
}
