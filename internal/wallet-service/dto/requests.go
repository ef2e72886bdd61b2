package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCoins int64  `json:"amount_coins"`
	Reason      string `json:"reason,omitempty"`
}

type ChargeRequest struct {
	UserID      string `json:"userId"`
	AmountCoins int64  `json:"amount_coins"`
	Reason      string `json:"reason,omitempty"` // ex: "barobets-stake"
}

type CreditRequest struct {
	UserID      string `json:"userId"`
	AmountCoins int64  `json:"amount_coins"`
	Reason      string `json:"reason,omitempty"` // ex: "barobets-reward", "barobets-stake-refund"
}
