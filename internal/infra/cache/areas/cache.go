package areas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/geo"
)

// RedisCache короткоживущий кеш кандидатов геопоиска.
// Ключ включает номер поколения: Invalidate увеличивает его, и старые записи просто истекают по TTL.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger Logger
}

// NewRedisCache создает кеш поверх клиента Redis
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration, logger Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisCache) generationKey() string {
	return c.prefix + "areas:generation"
}

// Key строит ключ для округлённой точки и радиуса в текущем поколении
func (c *RedisCache) Key(ctx context.Context, origin geo.Point, radiusMeters int) (string, error) {
	generation, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		generation = 0
	} else if err != nil {
		return "", fmt.Errorf("%w: Key - get generation: %w", ErrCache, err)
	}

	return fmt.Sprintf("%sareas:nearby:%d:%.4f:%.4f:%d", c.prefix, generation, origin.Lat, origin.Lng, radiusMeters), nil
}

// Get возвращает закешированных кандидатов; false - промах
func (c *RedisCache) Get(ctx context.Context, key string) ([]domain.ParkingArea, bool, error) {
	payload, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: Get: %w", ErrCache, err)
	}

	var cached []cachedArea
	if err := json.Unmarshal([]byte(payload), &cached); err != nil {
		// Битую запись удаляем, чтобы не промахиваться по ней до конца TTL
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			c.logger.Warn("areas cache: failed to drop corrupted key %s: %v", key, delErr)
		}
		return nil, false, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	result := make([]domain.ParkingArea, 0, len(cached))
	for _, a := range cached {
		result = append(result, a.toDomain())
	}
	return result, true, nil
}

// Set кладёт кандидатов в кеш на TTL
func (c *RedisCache) Set(ctx context.Context, key string, list []domain.ParkingArea) error {
	cached := make([]cachedArea, 0, len(list))
	for _, a := range list {
		cached = append(cached, toCached(a))
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("%w: Set - marshal: %w", ErrCache, err)
	}

	if err := c.client.Set(ctx, key, string(payload), c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set: %w", ErrCache, err)
	}
	return nil
}

// Invalidate начинает новое поколение ключей
func (c *RedisCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		return fmt.Errorf("%w: Invalidate: %w", ErrCache, err)
	}
	return nil
}

// Noop кеш для запуска без Redis
type Noop struct{}

func (Noop) Key(context.Context, geo.Point, int) (string, error) { return "", nil }

func (Noop) Get(context.Context, string) ([]domain.ParkingArea, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []domain.ParkingArea) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }
