package engine

// Stage é o estágio do ciclo de vida de um jogo. Enum fechado: combinações
// ilegais ("fechado e finalizado" como flags independentes) não são representáveis.
type Stage string

const (
	StageOpen       Stage = "OPEN"
	StageClosed     Stage = "CLOSED"
	StageFinished   Stage = "FINISHED"
	StageForcedOpen Stage = "FORCED_OPEN"
)

// Valid reporta se s é um dos quatro estágios conhecidos (usado no load do roster).
func (s Stage) Valid() bool {
	switch s {
	case StageOpen, StageClosed, StageFinished, StageForcedOpen:
		return true
	}
	return false
}
