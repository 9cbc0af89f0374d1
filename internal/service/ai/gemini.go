package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"github.com/jaidee/backend/internal/model/chat"
)

const providerGemini = "gemini"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGateway talks to the Gemini API through the genai SDK.
type GeminiGateway struct {
	models      contentGenerator
	model       string
	temperature *float32
}

// NewGeminiGateway creates a client for the Gemini developer API.
func NewGeminiGateway(ctx context.Context, apiKey, model string, temperature *float32) (*GeminiGateway, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newGeminiGateway(client.Models, model, temperature), nil
}

func newGeminiGateway(models contentGenerator, model string, temperature *float32) *GeminiGateway {
	return &GeminiGateway{
		models:      models,
		model:       strings.TrimSpace(model),
		temperature: temperature,
	}
}

// Complete implements Gateway.
func (g *GeminiGateway) Complete(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
		Temperature:       g.temperature,
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := g.models.GenerateContent(ctx, g.model, buildContents(req.History, req.Prompt), config)
	if err != nil {
		return "", classify(providerGemini, fmt.Errorf("generate content: %w", err))
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", malformed(providerGemini, "no candidates in response")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", malformed(providerGemini, "empty text in response")
	}

	log.Printf("[ai] gemini completion ok, model=%s, history=%d, length=%d", g.model, len(req.History), len(text))
	return text, nil
}

// buildContents maps turns onto Gemini roles. System turns are folded into
// user content because Gemini only accepts user and model roles.
func buildContents(turns []chat.Turn, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns)+1)
	for _, turn := range turns {
		role := genai.RoleUser
		if turn.Role == chat.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}
