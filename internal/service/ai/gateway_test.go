package ai_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/jaidee/backend/internal/model/chat"
	"github.com/jaidee/backend/internal/service/ai"
	"github.com/jaidee/backend/internal/testutil"
)

func TestChainGatewayBuildsMessages(t *testing.T) {
	fake := &testutil.ChatModel{Reply: "  สวัสดีจ้า  "}
	gw, err := ai.NewChainGateway(context.Background(), "local", fake)
	if err != nil {
		t.Fatalf("NewChainGateway err: %v", err)
	}

	reply, err := gw.Complete(context.Background(), ai.Request{
		System: "be kind",
		History: []chat.Turn{
			chat.UserTurn("hi"),
			chat.AssistantTurn("hello"),
		},
		Prompt:    "how are you?",
		MaxTokens: 64,
	})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply != "สวัสดีจ้า" {
		t.Fatalf("expected trimmed reply, got %q", reply)
	}

	inputs := fake.Inputs()
	if len(inputs) != 1 {
		t.Fatalf("expected one model call, got %d", len(inputs))
	}
	msgs := inputs[0]
	if len(msgs) != 4 {
		t.Fatalf("expected system+2 history+query, got %d messages", len(msgs))
	}
	wantRoles := []schema.RoleType{schema.System, schema.User, schema.Assistant, schema.User}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Fatalf("message %d role = %s, want %s", i, msgs[i].Role, role)
		}
	}
	if msgs[0].Content != "be kind" || msgs[3].Content != "how are you?" {
		t.Fatalf("unexpected contents: %q / %q", msgs[0].Content, msgs[3].Content)
	}
}

func TestChainGatewayKeepsBracesInUserText(t *testing.T) {
	fake := &testutil.ChatModel{Reply: "ok"}
	gw, err := ai.NewChainGateway(context.Background(), "local", fake)
	if err != nil {
		t.Fatalf("NewChainGateway err: %v", err)
	}

	if _, err := gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "{not a var}"}); err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	msgs := fake.Inputs()[0]
	if got := msgs[len(msgs)-1].Content; got != "{not a var}" {
		t.Fatalf("unexpected user content: %q", got)
	}
}

func TestChainGatewayEmptyReplyIsMalformed(t *testing.T) {
	gw, err := ai.NewChainGateway(context.Background(), "local", &testutil.ChatModel{Reply: "   "})
	if err != nil {
		t.Fatalf("NewChainGateway err: %v", err)
	}

	_, err = gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "p"})
	if kind, ok := ai.KindOf(err); !ok || kind != ai.KindMalformed {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestChainGatewayModelFailureIsUnavailable(t *testing.T) {
	gw, err := ai.NewChainGateway(context.Background(), "ark", &testutil.ChatModel{Err: errors.New("model overloaded")})
	if err != nil {
		t.Fatalf("NewChainGateway err: %v", err)
	}

	_, err = gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "p"})
	if kind, ok := ai.KindOf(err); !ok || kind != ai.KindUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestChainGatewayRejectsEmptyPrompt(t *testing.T) {
	fake := &testutil.ChatModel{Reply: "ok"}
	gw, err := ai.NewChainGateway(context.Background(), "local", fake)
	if err != nil {
		t.Fatalf("NewChainGateway err: %v", err)
	}

	if _, err := gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "  "}); !errors.Is(err, ai.ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if len(fake.Inputs()) != 0 {
		t.Fatal("model must not be called for empty prompt")
	}
}

func TestRetryRetriesNetworkErrors(t *testing.T) {
	attempts := 0
	fake := testutil.NewGateway()
	fake.Respond = func(ai.Request) (string, error) {
		attempts++
		if attempts < 3 {
			return "", &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return "ok", nil
	}

	gw := ai.WithRetry(fake, "fake", ai.RetryPolicy{Attempts: 3, Backoff: time.Millisecond})
	reply, err := gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "p"})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply != "ok" || fake.Calls() != 3 {
		t.Fatalf("expected success on third attempt, reply=%q calls=%d", reply, fake.Calls())
	}
}

func TestRetryStopsOnNonTransientError(t *testing.T) {
	fake := testutil.FailingGateway(errors.New("invalid api key"))

	gw := ai.WithRetry(fake, "fake", ai.RetryPolicy{Attempts: 5, Backoff: time.Millisecond})
	_, err := gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "p"})
	if kind, ok := ai.KindOf(err); !ok || kind != ai.KindUnavailable {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if fake.Calls() != 1 {
		t.Fatalf("expected a single attempt, got %d", fake.Calls())
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	fake := testutil.FailingGateway(testutil.NetworkError())

	gw := ai.WithRetry(fake, "fake", ai.RetryPolicy{Attempts: 2, Backoff: time.Millisecond})
	_, err := gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "p"})
	if kind, ok := ai.KindOf(err); !ok || kind != ai.KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if fake.Calls() != 2 {
		t.Fatalf("expected 2 attempts, got %d", fake.Calls())
	}
}

type slowGateway struct{ calls int }

func (s *slowGateway) Complete(ctx context.Context, _ ai.Request) (string, error) {
	s.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRetryTimeoutIsNetworkFailure(t *testing.T) {
	slow := &slowGateway{}
	gw := ai.WithRetry(slow, "slow", ai.RetryPolicy{Attempts: 2, Backoff: time.Millisecond, Timeout: 10 * time.Millisecond})

	_, err := gw.Complete(context.Background(), ai.Request{System: "s", Prompt: "p"})
	if kind, ok := ai.KindOf(err); !ok || kind != ai.KindNetwork {
		t.Fatalf("expected network error on timeout, got %v", err)
	}
	if slow.calls != 2 {
		t.Fatalf("expected timeout to be retried, got %d calls", slow.calls)
	}
}

func TestRetryHonoursCanceledContext(t *testing.T) {
	fake := testutil.FailingGateway(testutil.NetworkError())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gw := ai.WithRetry(fake, "fake", ai.RetryPolicy{Attempts: 5, Backoff: time.Second})
	if _, err := gw.Complete(ctx, ai.Request{System: "s", Prompt: "p"}); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if fake.Calls() != 1 {
		t.Fatalf("expected no retries after cancel, got %d calls", fake.Calls())
	}
}
