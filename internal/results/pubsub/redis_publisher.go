package pubsub

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ChannelResultsBroadcast = "game_results_broadcast"

type RedisBroadcaster struct {
	r *redis.Client
}

func NewRedisBroadcaster(r *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{r: r}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.r.Publish(ctx, channel, payload).Err()
}

// Payload padrão pro feed WebSocket do game-service
type WSUpdate struct {
	GameID  string      `json:"gameId"`
	Payload interface{} `json:"payload"`
}
