package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const loaderLockKey = "elena:loader:running"

// RunLock esclusione mutua tra run del loader
type RunLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

// RedisRunLock lock su Redis via SETNX con TTL: run schedulati e manuali non
// si sovrappongono, e un processo morto non lascia il lock per sempre.
type RedisRunLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRunLock crea il lock
func NewRedisRunLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRunLock {
	return &RedisRunLock{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire prova a prendere il lock; false se un altro run è in corso
func (l *RedisRunLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, loaderLockKey, time.Now().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Release rilascia il lock
func (l *RedisRunLock) Release(ctx context.Context) {
	if err := l.client.Del(ctx, loaderLockKey).Err(); err != nil {
		l.logger.Warn("Failed to release loader lock",
			zap.Error(err),
		)
	}
}
