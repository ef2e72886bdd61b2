package dto

import "time"

type GameResponse struct {
	GameID      int64      `json:"gameId"`
	CycloneTime time.Time  `json:"cyclone_time"`
	CloseTime   time.Time  `json:"close_time"`
	Stage       string     `json:"stage"`
	Observed    *float64   `json:"observed,omitempty"`
	GuessCount  int        `json:"guess_count"`
}

// Status do submit: ACCEPTED | GAME_CLOSED | INSUFFICIENT_FUNDS
type SubmitGuessResponse struct {
	GameID   int64   `json:"gameId"`
	UserID   string  `json:"userId"`
	Value    float64 `json:"value,omitempty"`
	Status   string  `json:"status"`
	Warning  string  `json:"warning,omitempty"` // "low" | "high"
	Message  string  `json:"message,omitempty"`

	DuplicateOf     string `json:"duplicate_of,omitempty"`
	DuplicateOfName string `json:"duplicate_of_name,omitempty"`

	StakeCharged  bool  `json:"stake_charged,omitempty"`
	StakeRefunded bool  `json:"stake_refunded,omitempty"`
	Cost          int64 `json:"cost,omitempty"`
	Balance       int64 `json:"balance,omitempty"`

	Board *BoardResponse `json:"board,omitempty"`
}

type BoardResponse struct {
	GameID   int64                `json:"gameId"`
	Final    bool                 `json:"final"`
	Observed *float64             `json:"observed,omitempty"`
	Average  *float64             `json:"average,omitempty"`
	Entries  []BoardEntryResponse `json:"entries"`
}

type BoardEntryResponse struct {
	UserID string   `json:"userId"`
	Name   string   `json:"name"`
	Value  float64  `json:"value"`
	Error  *float64 `json:"error,omitempty"` // com sinal, só com observação
}

type RankingEntryResponse struct {
	UserID  string  `json:"userId"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Error   float64 `json:"error"`
	Wagered bool    `json:"wagered"`
	Reward  int64   `json:"reward"`
}

type FinishResponse struct {
	GameID       int64                  `json:"gameId"`
	Observed     float64                `json:"observed"`
	Participants int                    `json:"participants"`
	NoWinner     bool                   `json:"no_winner"`
	Direction    string                 `json:"direction,omitempty"` // "high" | "low"
	Rankings     []RankingEntryResponse `json:"rankings"`
	Board        *BoardResponse         `json:"board,omitempty"`
}

type ForceOpenResponse struct {
	GameID int64 `json:"gameId"`
	Opened bool  `json:"opened"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
