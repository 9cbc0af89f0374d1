// Package testutil provides fakes shared by service and handler tests.
package testutil

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/jaidee/backend/internal/service/ai"
)

// Gateway is a scripted ai.Gateway that records every request.
type Gateway struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []ai.Request

	// Respond, when set, computes the reply from the request and takes
	// precedence over the scripted replies.
	Respond func(req ai.Request) (string, error)
}

// NewGateway returns a gateway that answers with replies in order, repeating
// the last one once the script runs out.
func NewGateway(replies ...string) *Gateway {
	return &Gateway{replies: replies}
}

// FailingGateway returns a gateway whose every call fails with err.
func FailingGateway(err error) *Gateway {
	return &Gateway{err: err}
}

// NetworkError is a ready-made transient gateway failure.
func NetworkError() error {
	return &ai.Error{Kind: ai.KindNetwork, Provider: "fake", Err: context.DeadlineExceeded}
}

// Complete implements ai.Gateway.
func (g *Gateway) Complete(_ context.Context, req ai.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.requests = append(g.requests, req)
	if g.Respond != nil {
		return g.Respond(req)
	}
	if g.err != nil {
		return "", g.err
	}
	if len(g.replies) == 0 {
		return "", nil
	}

	idx := len(g.requests) - 1
	if idx >= len(g.replies) {
		idx = len(g.replies) - 1
	}
	return g.replies[idx], nil
}

// SetError makes subsequent calls fail with err; nil restores the script.
func (g *Gateway) SetError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Calls returns how many times Complete was invoked.
func (g *Gateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// Requests returns a copy of the recorded requests.
func (g *Gateway) Requests() []ai.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ai.Request(nil), g.requests...)
}

// LastRequest returns the most recent request, or the zero value.
func (g *Gateway) LastRequest() ai.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return ai.Request{}
	}
	return g.requests[len(g.requests)-1]
}

// ChatModel is a fake eino chat model returning a fixed message.
type ChatModel struct {
	mu     sync.Mutex
	Reply  string
	Err    error
	inputs [][]*schema.Message
}

// Generate implements model.BaseChatModel.
func (m *ChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = append(m.inputs, input)
	if m.Err != nil {
		return nil, m.Err
	}
	return schema.AssistantMessage(m.Reply, nil), nil
}

// Stream implements model.BaseChatModel.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Inputs returns the message lists the model received.
func (m *ChatModel) Inputs() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]*schema.Message(nil), m.inputs...)
}
