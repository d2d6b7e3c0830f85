// Package lock provides short-lived single-flight locks keyed by string.
package lock

import (
	"context"
	_ "embed"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrHeld is returned when another owner currently holds the key.
var ErrHeld = errors.New("lock held")

//go:embed lua/release.lua
var luaRelease string

// Locker acquires a lock for key or fails fast with ErrHeld.
// The returned release func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Redis is a Locker backed by SET NX PX with an owner-checked release.
type Redis struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
	scrRel *redis.Script
}

func NewRedis(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	return &Redis{
		rdb:    rdb,
		ttl:    ttl,
		prefix: prefix,
		scrRel: redis.NewScript(luaRelease),
	}
}

func (l *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + "{" + key + "}"
	owner := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, fullKey, owner, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be cancelled
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := l.scrRel.Run(rctx, l.rdb, []string{fullKey}, owner).Err(); err != nil {
				log.Warn().Err(err).Str("key", fullKey).Msg("Failed to release lock")
			}
		})
	}, nil
}

// Local is an in-process Locker used when Redis is not configured.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

func (l *Local) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, ErrHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// New returns a Redis locker when rdb is non-nil, otherwise a Local one.
func New(rdb *redis.Client, prefix string, ttl time.Duration) Locker {
	if rdb == nil {
		return NewLocal()
	}
	return NewRedis(rdb, prefix, ttl)
}
