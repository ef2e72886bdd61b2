package engine

import "errors"

// Erros de domínio do jogo. Todos são recuperados na borda HTTP e viram
// resposta pro usuário; nenhum deve derrubar o serviço.
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrInvalidStage      = errors.New("invalid stage for operation")
	ErrGameFinished      = errors.New("game already finished")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoGuesses         = errors.New("no guesses")
	ErrNoObservation     = errors.New("no observed pressure")
	ErrAlreadyObserved   = errors.New("pressure already observed")
)
