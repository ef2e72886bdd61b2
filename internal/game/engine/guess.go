package engine

import "math"

// Guess é o palpite de um usuário em um jogo: pressão (hPa, 1 casa decimal)
// e se o usuário pagou a stake pra concorrer ao prêmio.
// Pertence exclusivamente ao Game; não tem identidade fora do mapa de palpites.
type Guess struct {
	UserID  string
	Value   float64
	Wagered bool
}

// ErrorVs retorna o erro com sinal do palpite contra a pressão observada.
// Derivado, nunca armazenado.
func (g Guess) ErrorVs(observed float64) float64 {
	return g.Value - observed
}

// round1 arredonda pra uma casa decimal (regra de intake do palpite).
func round1(v float64) float64 {
	return math.Round(v*10.0) / 10.0
}
