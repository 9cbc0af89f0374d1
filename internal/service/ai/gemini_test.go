package ai

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"github.com/jaidee/backend/internal/model/chat"
)

type fakeGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, genai.RoleModel)}},
	}
}

func TestGeminiGatewayComplete(t *testing.T) {
	gen := &fakeGenerator{resp: textResponse(" เศร้า \n")}
	gw := newGeminiGateway(gen, "gemini-test", nil)

	reply, err := gw.Complete(context.Background(), Request{
		System:    "classify",
		History:   []chat.Turn{chat.UserTurn("a"), chat.AssistantTurn("b")},
		Prompt:    "diary",
		MaxTokens: 8,
	})
	if err != nil {
		t.Fatalf("Complete err: %v", err)
	}
	if reply != "เศร้า" {
		t.Fatalf("unexpected reply %q", reply)
	}

	if len(gen.contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(gen.contents))
	}
	if gen.contents[1].Role != string(genai.RoleModel) || gen.contents[2].Role != string(genai.RoleUser) {
		t.Fatalf("unexpected roles: %s %s", gen.contents[1].Role, gen.contents[2].Role)
	}
	if gen.config.MaxOutputTokens != 8 {
		t.Fatalf("unexpected max tokens: %d", gen.config.MaxOutputTokens)
	}
	if gen.config.SystemInstruction == nil || gen.config.SystemInstruction.Parts[0].Text != "classify" {
		t.Fatal("system instruction not forwarded")
	}
}

func TestGeminiGatewayEmptyCandidates(t *testing.T) {
	gw := newGeminiGateway(&fakeGenerator{resp: &genai.GenerateContentResponse{}}, "m", nil)

	_, err := gw.Complete(context.Background(), Request{System: "s", Prompt: "p"})
	if kind, ok := KindOf(err); !ok || kind != KindMalformed {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestGeminiGatewayDeadlineIsNetwork(t *testing.T) {
	gw := newGeminiGateway(&fakeGenerator{err: context.DeadlineExceeded}, "m", nil)

	_, err := gw.Complete(context.Background(), Request{System: "s", Prompt: "p"})
	if kind, ok := KindOf(err); !ok || kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("cause should be preserved")
	}
}
