package topics

const (
	// BaroBets
	GuessPlaced  = "guess_placed"
	GameFinished = "game_finished"

	// DLQs
	GameFinishedDLQ = "game_finished_dlq"
)
