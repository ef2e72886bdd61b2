package engine

// Warning de sanidade sobre o valor do palpite. Não bloqueia o aceite.
type Warning string

const (
	WarnNone Warning = ""
	WarnLow  Warning = "low"
	WarnHigh Warning = "high"
)

// SubmitOutcome é o resultado de um submit de palpite, pronto pra superfície
// de mensagens formatar. Accepted=false com Closed=true significa jogo
// fechado (o Board atual vai junto na resposta).
type SubmitOutcome struct {
	GameID   int64
	UserID   string
	Value    float64
	Accepted bool
	Closed   bool

	Warning         Warning
	DuplicateOf     string // userID que já tinha palpite com o mesmo valor (aviso, não bloqueia)
	DuplicateOfName string

	StakeCharged  bool
	StakeRefunded bool

	// preenchidos quando a cobrança da stake falha por saldo insuficiente
	Cost    int64
	Balance int64

	Board *Board
}

// RankedGuess é uma entrada do ranking final, melhor palpite primeiro.
type RankedGuess struct {
	UserID  string
	Name    string
	Value   float64
	Error   float64 // value - observed, com sinal
	Wagered bool
	Reward  int64 // moedas pagas (0 se não apostou ou rodada sem vencedores)
}

// FinishOutcome é o resultado da distribuição de prêmios.
// Participants decide o tom do anúncio (1: vencedor único; 2: 1º vence 2º;
// 3+: pódio completo). Rankings vem preenchido mesmo em NoWinner, pra
// histórico e board — só Reward fica zerado.
type FinishOutcome struct {
	GameID       int64
	Observed     float64
	Participants int

	NoWinner  bool
	Direction string // "high" | "low" quando NoWinner

	Rankings []RankedGuess
	Board    *Board
}

// Board é o contrato de dados do quadro de resultados (a formatação de
// exibição fica na superfície de mensagens). Sem observação: Entries
// ascendente por valor e
// Average preenchido. Com observação: ascendente por erro absoluto, Error
// com sinal em cada entrada, Final indica título "final" vs "current".
type Board struct {
	GameID   int64
	Final    bool
	Observed *float64
	Average  float64
	Entries  []BoardEntry
}

type BoardEntry struct {
	UserID string
	Name   string
	Value  float64
	Error  *float64
}
