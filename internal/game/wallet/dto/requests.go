package dto

type ChargeRequest struct {
	UserID      string `json:"userId"`
	AmountCoins int64  `json:"amount_coins"`
	Reason      string `json:"reason,omitempty"`
}

type CreditRequest struct {
	UserID      string `json:"userId"`
	AmountCoins int64  `json:"amount_coins"`
	Reason      string `json:"reason,omitempty"`
}
