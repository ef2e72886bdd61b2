package directory

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisDirectory resolve userID em nome de exibição via Redis.
// A superfície de chat alimenta as chaves "player:name:{userID}"; o core só lê.
// Implementa engine.Directory.
type RedisDirectory struct {
	Rdb *redis.Client
}

func New(r *redis.Client) *RedisDirectory { return &RedisDirectory{Rdb: r} }

func key(userID string) string { return "player:name:" + userID }

// DisplayName retorna o nome cadastrado ou o próprio userID como fallback
// (chave ausente ou Redis fora não podem travar um comando do jogo).
func (d *RedisDirectory) DisplayName(ctx context.Context, userID string) string {
	val, err := d.Rdb.Get(ctx, key(userID)).Result()
	if err != nil || val == "" {
		return userID
	}
	return val
}

// SetDisplayName registra/atualiza o nome de exibição (usado pela superfície
// de chat quando resolve o usuário na plataforma).
func (d *RedisDirectory) SetDisplayName(ctx context.Context, userID, name string) error {
	return d.Rdb.Set(ctx, key(userID), name, 0).Err()
}
