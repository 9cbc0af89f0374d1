package chat_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	modelchat "github.com/jaidee/backend/internal/model/chat"
	chat "github.com/jaidee/backend/internal/service/chat"
)

// Runs only when REDIS_TEST_ADDR points at a disposable Redis instance.
func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	store := chat.NewRedisStore(client, time.Minute)
	session := modelchat.Session{ID: "test-" + time.Now().Format("150405.000000"), CreatedAt: time.Now().UTC()}
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	t.Cleanup(func() { _ = store.Delete(ctx, session.ID) })

	turns := []modelchat.Turn{
		modelchat.UserTurn("1"), modelchat.AssistantTurn("2"), modelchat.UserTurn("3"),
	}
	if err := store.Append(ctx, session.ID, 2, turns...); err != nil {
		t.Fatalf("Append err: %v", err)
	}

	got, err := store.Load(ctx, session.ID)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(got) != 2 || got[0].Text != "2" || got[1].Text != "3" {
		t.Fatalf("unexpected turns: %+v", got)
	}

	if err := store.Reset(ctx, session.ID); err != nil {
		t.Fatalf("Reset err: %v", err)
	}
	if got, _ := store.Load(ctx, session.ID); len(got) != 0 {
		t.Fatalf("expected empty history after reset, got %d", len(got))
	}

	if _, err := store.Load(ctx, "missing-session"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
