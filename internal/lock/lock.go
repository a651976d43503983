package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/markelira/elira-insight/log"
)

// Locker serializes job runs across replicas. Acquire returns false when
// another holder owns the name.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name string) error
}

type Config struct {
	Enable   bool   `yaml:"enable"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

const keyPrefix = "elira:insight:lease:"

type redisLocker struct {
	cli *redis.Client
}

func NewRedisLocker(ctx context.Context, cfg Config) (Locker, error) {
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	log.Info(ctx).Str("address", cfg.Address).Msg("job lease locker connected")
	return &redisLocker{cli: cli}, nil
}

func (l *redisLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return l.cli.SetNX(ctx, keyPrefix+name, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func (l *redisLocker) Release(ctx context.Context, name string) error {
	return l.cli.Del(ctx, keyPrefix+name).Err()
}

// noopLocker is the single-replica default when redis is not configured.
type noopLocker struct{}

func NewNoopLocker() Locker {
	return noopLocker{}
}

func (noopLocker) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (noopLocker) Release(ctx context.Context, name string) error {
	return nil
}
