package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		flightsTTL: flightsTTL,
	}
}

// GetFlights returns the cached flight list, or nil on a miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// EventProcessed reports whether a webhook event id was recorded.
func (c *RedisCache) EventProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := c.client.Exists(ctx, eventKey(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkEventProcessed records a handled webhook event id for ttl.
func (c *RedisCache) MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) error {
	return c.client.Set(ctx, eventKey(eventID), "1", ttl).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func eventKey(eventID string) string {
	return "webhook:event:" + eventID
}
