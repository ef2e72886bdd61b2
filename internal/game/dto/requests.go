package dto

import "time"

type CreateGameRequest struct {
	CycloneTime time.Time  `json:"cyclone_time"`
	CloseTime   *time.Time `json:"close_time,omitempty"` // default: cyclone_time - 2 dias
}

type SubmitGuessRequest struct {
	UserID   string  `json:"userId"`
	Pressure float64 `json:"pressure"` // hPa
	Wager    bool    `json:"wager"`
}

type ObserveRequest struct {
	Pressure float64 `json:"pressure"`
}
