package cron

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const defaultLockTTL = 55 * time.Minute

// Lock keeps maintenance cycles from overlapping across worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type tokenLocker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) (bool, error)
}

// RedisLock holds a single Redis key for the duration of a cycle.
type RedisLock struct {
	locker tokenLocker
	key    string
	ttl    time.Duration
	token  string
}

func NewRedisLock(locker tokenLocker, key string, ttl time.Duration) (*RedisLock, error) {
	if locker == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{locker: locker, key: key, ttl: ttl}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token, ok, err := l.locker.AcquireLock(ctx, l.key, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// Release is a no-op when the key expired or changed hands.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""
	if _, err := l.locker.ReleaseLock(ctx, l.key, token); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
