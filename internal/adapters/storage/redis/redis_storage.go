// Package redis disponibiliza a implementação do storage baseada em Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/JeanGrijp/storefront-guard/internal/core/domain"
	"github.com/JeanGrijp/storefront-guard/internal/core/ports"
)

// hitScript aplica a mesma transição de domain.AttemptRecord.Next de forma atômica.
// A chave expira logo após o fim da janela.
var hitScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local count = tonumber(redis.call('HGET', KEYS[1], 'count'))
local start = tonumber(redis.call('HGET', KEYS[1], 'start'))
if not count or not start or (now - start) > window then
  count = 1
  start = now
  redis.call('HSET', KEYS[1], 'count', count, 'start', start)
else
  count = redis.call('HINCRBY', KEYS[1], 'count', 1)
end
redis.call('EXPIRE', KEYS[1], start + window + 1 - now)
return {count, start}
`)

type Storage struct {
	client *redis.Client
}

var _ ports.AttemptStore = (*Storage)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) (*Storage, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Storage{client: client}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) Hit(ctx context.Context, key string, now, windowSeconds int64) (domain.AttemptRecord, error) {
	values, err := hitScript.Run(ctx, s.client, []string{key}, now, windowSeconds).Int64Slice()
	if err != nil {
		return domain.AttemptRecord{}, err
	}
	if len(values) != 2 {
		return domain.AttemptRecord{}, fmt.Errorf("unexpected hit script reply: %v", values)
	}
	return domain.AttemptRecord{Count: int(values[0]), WindowStart: values[1]}, nil
}

func (s *Storage) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
