package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/radieske/barobets-game-poc/internal/game/engine"
	walletdto "github.com/radieske/barobets-game-poc/internal/game/wallet/dto"
)

// Client fala com o wallet-service e implementa engine.Ledger.
// 409 na cobrança vira engine.ErrInsufficientFunds pro core tratar.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *Client) PayStake(ctx context.Context, userID string, amount int64) error {
	return c.charge(ctx, userID, amount, "barobets-stake")
}

func (c *Client) Refund(ctx context.Context, userID string, amount int64) error {
	return c.credit(ctx, userID, amount, "barobets-stake-refund")
}

func (c *Client) PayReward(ctx context.Context, userID string, amount int64) error {
	return c.credit(ctx, userID, amount, "barobets-reward")
}

func (c *Client) Balance(ctx context.Context, userID string) (int64, error) {
	u := c.BaseURL + "/wallet?userId=" + url.QueryEscape(userID)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return 0, fmt.Errorf("wallet balance http %d", res.StatusCode)
	}
	var out walletdto.BalanceResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.BalanceCoins, nil
}

func (c *Client) charge(ctx context.Context, userID string, amount int64, reason string) error {
	body, _ := json.Marshal(walletdto.ChargeRequest{UserID: userID, AmountCoins: amount, Reason: reason})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/charge", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusConflict {
		return engine.ErrInsufficientFunds
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet charge http %d", res.StatusCode)
	}
	return nil
}

func (c *Client) credit(ctx context.Context, userID string, amount int64, reason string) error {
	body, _ := json.Marshal(walletdto.CreditRequest{UserID: userID, AmountCoins: amount, Reason: reason})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/credit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("wallet credit http %d", res.StatusCode)
	}
	return nil
}
