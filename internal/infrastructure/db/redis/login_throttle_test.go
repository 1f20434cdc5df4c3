package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewLoginThrottle_Defaults(t *testing.T) {
	th := NewLoginThrottle(nil, 0, 0)
	if th.maxAttempts != defaultMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", defaultMaxAttempts, th.maxAttempts)
	}
	if th.window != defaultWindow {
		t.Fatalf("expected %s window, got %s", defaultWindow, th.window)
	}
	if got := th.key("alice"); got != "login_fail:alice" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestLoginThrottle_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	th := NewLoginThrottle(client, 3, time.Minute)
	if _, err := th.Blocked(context.Background(), "alice"); err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
	if err := th.RecordFailure(context.Background(), "alice"); err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
}
