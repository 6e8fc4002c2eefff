package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightapp/config"
	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	generationKey = "cache:flights:generation"
	flightKeyFmt  = "cache:flight:%d"
)

// SearchKey identifies one cached search result.
type SearchKey struct {
	From       string
	To         string
	Date       string
	Passengers int
}

// RedisCache stores search results and flight details. Search entries are
// namespaced by a generation counter, so bumping the counter makes every
// earlier result unreachable without scanning keys.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetSearch returns the cached flights and whether the entry existed.
func (c *RedisCache) GetSearch(ctx context.Context, key SearchKey) ([]domain.Flight, bool, error) {
	redisKey, err := c.searchKey(ctx, key)
	if err != nil {
		return nil, false, err
	}

	var flights []domain.Flight
	ok, err := c.get(ctx, redisKey, &flights)
	if err != nil || !ok {
		return nil, ok, err
	}
	return flights, true, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key SearchKey, flights []domain.Flight) error {
	redisKey, err := c.searchKey(ctx, key)
	if err != nil {
		return err
	}
	return c.set(ctx, redisKey, flights)
}

func (c *RedisCache) GetFlight(ctx context.Context, id int64) (*domain.Flight, bool, error) {
	var flight domain.Flight
	ok, err := c.get(ctx, fmt.Sprintf(flightKeyFmt, id), &flight)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &flight, true, nil
}

func (c *RedisCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	return c.set(ctx, fmt.Sprintf(flightKeyFmt, flight.ID), flight)
}

// Invalidate drops the flight's detail entry and retires every cached
// search result.
func (c *RedisCache) Invalidate(ctx context.Context, flightID int64) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, generationKey)
	pipe.Del(ctx, fmt.Sprintf(flightKeyFmt, flightID))
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateSearches retires cached search results only.
func (c *RedisCache) InvalidateSearches(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}

func (c *RedisCache) searchKey(ctx context.Context, key SearchKey) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("cache:search:%d:%s:%s:%s:%d",
		gen, strings.ToLower(key.From), strings.ToLower(key.To), key.Date, key.Passengers), nil
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}
