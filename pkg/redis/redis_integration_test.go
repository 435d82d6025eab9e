//go:build integration

package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"score-engine/config"
	pkgerrors "score-engine/pkg/errors"
)

// TEST_REDIS_ADDR 가 없으면 건너뛴다
func setupTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR 미설정")
	}
	c, err := NewClient(&config.RedisConfig{Addr: addr}, zap.NewNop())
	if err != nil {
		t.Fatalf("Redis 연결 실패: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLock_ExclusiveUntilReleased(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	lock, err := c.AcquireLock(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("첫 잠금 획득 실패: %v", err)
	}

	if _, err := c.AcquireLock(ctx, key, time.Minute); !errors.Is(err, pkgerrors.ErrLockNotAcquired) {
		t.Fatalf("기대 ErrLockNotAcquired, 실제=%v", err)
	}

	if err := c.ReleaseLock(ctx, lock); err != nil {
		t.Fatalf("잠금 해제 실패: %v", err)
	}

	again, err := c.AcquireLock(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("해제 후 재획득 실패: %v", err)
	}
	_ = c.ReleaseLock(ctx, again)
}

func TestLock_ReleaseAfterExpiry(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()
	key := "test:" + uuid.NewString()

	lock, err := c.AcquireLock(ctx, key, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("잠금 획득 실패: %v", err)
	}
	time.Sleep(120 * time.Millisecond)

	// 만료 후 다른 소유자가 잡은 잠금은 지우지 않는다
	other, err := c.AcquireLock(ctx, key, time.Minute)
	if err != nil {
		t.Fatalf("만료 후 획득 실패: %v", err)
	}
	if err := c.ReleaseLock(ctx, lock); !errors.Is(err, pkgerrors.ErrLockNotHeld) {
		t.Fatalf("기대 ErrLockNotHeld, 실제=%v", err)
	}
	if err := c.ReleaseLock(ctx, other); err != nil {
		t.Fatalf("현재 소유자 해제 실패: %v", err)
	}
}

func TestReleaseLock_Nil(t *testing.T) {
	c := setupTestClient(t)
	if err := c.ReleaseLock(context.Background(), nil); err != nil {
		t.Errorf("nil 잠금 해제는 무시되어야 함: %v", err)
	}
}

func TestCheckRateLimit(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()
	key := "rate_limit:test:" + uuid.NewString()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 실패: %v", err)
		}
		if !ok {
			t.Fatalf("%d번째 요청은 허용되어야 함", i+1)
		}
	}

	ok, err := c.CheckRateLimit(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatalf("CheckRateLimit 실패: %v", err)
	}
	if ok {
		t.Error("한도를 넘은 요청은 거부되어야 함")
	}
}
