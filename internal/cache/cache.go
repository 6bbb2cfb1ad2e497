// cache хранит одноразовые коды подтверждения почты с TTL.
// Вынесен за интерфейс, чтобы валидность кода была общей для всех
// инстансов сервиса (а не процесс-локальной).
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPCache — минимальный контракт кэша одноразовых кодов.
type OTPCache interface {
	// Set сохраняет код для адреса с заданным TTL, затирая предыдущий.
	Set(ctx context.Context, email, code string, ttl time.Duration) error
	// Get возвращает код и признак его наличия в кэше.
	Get(ctx context.Context, email string) (string, bool, error)
	// Del удаляет код (после успешной проверки).
	Del(ctx context.Context, email string) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "otp:email:".
func NewRedisCache(redisURL, prefix string) (OTPCache, error) {
	if prefix == "" {
		prefix = "otp:email:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(email string) string { return c.prefix + email }

func (c *redisCache) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(email), code, ttl).Err()
}

func (c *redisCache) Get(ctx context.Context, email string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, c.key(email)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return val, true, nil
}

func (c *redisCache) Del(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, c.key(email)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
