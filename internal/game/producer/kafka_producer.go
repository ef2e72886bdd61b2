package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/barobets-game-poc/pkg/contracts/events"
)

// KafkaPublisher publica eventos do jogo nos tópicos de guess e finalização.
type KafkaPublisher struct {
	GuessWriter    *kafka.Writer
	FinishedWriter *kafka.Writer
}

func NewKafkaPublisher(guessW, finishedW *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{GuessWriter: guessW, FinishedWriter: finishedW}
}

func (p *KafkaPublisher) PublishGuessPlaced(ctx context.Context, e events.GuessPlaced) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)
	return p.GuessWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.GameID, 10)),
		Value: b,
	})
}

func (p *KafkaPublisher) PublishGameFinished(ctx context.Context, e events.GameFinished) error {
	e.Ts = time.Now()
	b, _ := json.Marshal(e)
	return p.FinishedWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.GameID, 10)),
		Value: b,
	})
}
