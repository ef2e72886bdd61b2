package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// GameID: obrigatório para subscribe/unsubscribe ("latest" não é aceito aqui;
// o cliente resolve o id pela API REST antes de assinar)
type ClientMsg struct {
	Type   string `json:"type"`   // subscribe | unsubscribe | ping
	GameID string `json:"gameId"` // requerido em subscribe/unsubscribe
}

// BoardUpdate é o quadro de resultados enviado aos clientes WebSocket
// quando um jogo finaliza (payload vem do results-worker via Redis Pub/Sub)
type BoardUpdate struct {
	GameID  string      `json:"gameId"`
	Payload interface{} `json:"payload"`
}
