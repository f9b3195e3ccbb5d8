package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// AlertGuard reserves alert keys with SetNX so a subscription cannot fire
// twice across process restarts. A reservation is released when the delivery
// behind it fails, making the alert eligible for the next tick.
type AlertGuard struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *AlertGuard {
	return &AlertGuard{Client: client, TTL: ttl}
}

func (g *AlertGuard) TryReserve(ctx context.Context, key string) (bool, error) {
	ok, err := g.Client.SetNX(ctx, key, "1", g.TTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (g *AlertGuard) Release(ctx context.Context, key string) error {
	return g.Client.Del(ctx, key).Err()
}
