package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// RetryPolicy bounds how a gateway call is attempted.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
	// Timeout bounds each individual attempt. Zero means no per-attempt bound.
	Timeout time.Duration
}

type retryGateway struct {
	next     Gateway
	provider string
	policy   RetryPolicy
}

// WithRetry wraps g so that network failures are retried with linear backoff
// and every attempt runs under the policy's timeout.
func WithRetry(g Gateway, provider string, policy RetryPolicy) Gateway {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &retryGateway{next: g, provider: provider, policy: policy}
}

func (r *retryGateway) Complete(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	var lastErr *Error
	for i := 0; i < r.policy.Attempts; i++ {
		text, err := r.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// 调用方已取消，不再重试
		if ctx.Err() != nil {
			return "", lastErr
		}
		if err.Kind != KindNetwork || i == r.policy.Attempts-1 {
			break
		}

		retryDelay := time.Duration(i+1) * r.policy.Backoff
		log.Printf("[ai] %s attempt %d/%d failed, retrying in %s: %v", r.provider, i+1, r.policy.Attempts, retryDelay, err)
		select {
		case <-ctx.Done():
			return "", lastErr
		case <-time.After(retryDelay):
		}
	}

	return "", fmt.Errorf("gave up after %d attempt(s): %w", r.policy.Attempts, lastErr)
}

func (r *retryGateway) attempt(ctx context.Context, req Request) (string, *Error) {
	attemptCtx := ctx
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}

	text, err := r.next.Complete(attemptCtx, req)
	if err == nil {
		return text, nil
	}

	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", &Error{Kind: KindNetwork, Provider: r.provider, Err: fmt.Errorf("attempt timed out after %s: %w", r.policy.Timeout, err)}
	}
	return "", classify(r.provider, err)
}
