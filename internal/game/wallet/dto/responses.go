package dto

type BalanceResponse struct {
	UserID       string `json:"userId"`
	WalletID     string `json:"walletId"`
	BalanceCoins int64  `json:"balance_coins"`
}
