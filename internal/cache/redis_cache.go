package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

const (
	catalogKey  = "pos:catalog:snapshot"
	settingsKey = "pos:settings:snapshot"
)

type RedisSnapshotCache struct {
	client *redis.Client
}

func NewRedisSnapshotCache(addr string, password string, db int) *RedisSnapshotCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSnapshotCache{client: client}
}

func (c *RedisSnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSnapshotCache) Close() error {
	return c.client.Close()
}

func (c *RedisSnapshotCache) GetItems(ctx context.Context) ([]domain.Item, bool, error) {
	val, err := c.client.Get(ctx, catalogKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []domain.Item
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (c *RedisSnapshotCache) SetItems(ctx context.Context, items []domain.Item, ttl time.Duration) error {
	if len(items) == 0 {
		return nil
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, payload, ttl).Err()
}

func (c *RedisSnapshotCache) GetSettings(ctx context.Context) (*domain.ShopSettings, bool, error) {
	val, err := c.client.Get(ctx, settingsKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var settings domain.ShopSettings
	if err := json.Unmarshal([]byte(val), &settings); err != nil {
		return nil, false, err
	}
	return &settings, true, nil
}

func (c *RedisSnapshotCache) SetSettings(ctx context.Context, settings domain.ShopSettings, ttl time.Duration) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, settingsKey, payload, ttl).Err()
}
