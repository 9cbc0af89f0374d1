package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/jaidee/backend/internal/model/chat"
)

// ChainGateway runs requests through an eino chain of
// ChatTemplate(system, history, query) -> ChatModel. It backs the ark, openai
// and local providers.
type ChainGateway struct {
	provider string
	chain    compose.Runnable[map[string]any, *schema.Message]
}

// NewChainGateway compiles the chat chain around chatModel.
func NewChainGateway(ctx context.Context, provider string, chatModel model.BaseChatModel) (*ChainGateway, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required for provider %s", provider)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ChainGateway{provider: provider, chain: runnable}, nil
}

// Complete implements Gateway.
func (g *ChainGateway) Complete(ctx context.Context, req Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	input := map[string]any{
		"system":  req.System,
		"history": buildHistoryMessages(req.History),
		"query":   req.Prompt,
	}

	var opts []compose.Option
	if req.MaxTokens > 0 {
		opts = append(opts, compose.WithChatModelOption(model.WithMaxTokens(req.MaxTokens)))
	}

	response, err := g.chain.Invoke(ctx, input, opts...)
	if err != nil {
		return "", classify(g.provider, fmt.Errorf("failed to run chat chain: %w", err))
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", malformed(g.provider, "empty model response")
	}

	log.Printf("[ai] %s completion ok, history=%d, length=%d", g.provider, len(req.History), len(response.Content))
	return strings.TrimSpace(response.Content), nil
}

func buildHistoryMessages(turns []chat.Turn) []*schema.Message {
	if len(turns) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(turn.Text))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(turn.Text, nil))
		case chat.RoleSystem:
			history = append(history, schema.SystemMessage(turn.Text))
		}
	}
	return history
}
