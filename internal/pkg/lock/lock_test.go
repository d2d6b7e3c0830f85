package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func exerciseLocker(t *testing.T, l Locker) {
	t.Helper()
	ctx := context.Background()
	key := "quiz:" + uuid.NewString()

	release, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := l.Acquire(ctx, key); !errors.Is(err, ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}

	other, err := l.Acquire(ctx, key+":other")
	if err != nil {
		t.Fatalf("independent key: %v", err)
	}
	other()

	release()
	release()

	again, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}

func TestLocalLocker(t *testing.T) {
	exerciseLocker(t, NewLocal())
}

func TestRedisLocker(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}

	exerciseLocker(t, NewRedis(rdb, "test:lock:", 5*time.Second))
}

func TestNewFallsBackToLocal(t *testing.T) {
	if _, ok := New(nil, "x:", time.Second).(*Local); !ok {
		t.Fatal("expected local locker without redis")
	}
}
