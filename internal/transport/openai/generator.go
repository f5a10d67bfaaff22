package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/knowsprint/knowsprint/internal/domain"
)

const generateTimeout = 5 * time.Second

// Placeholder returned when no generation backend is configured.
const generationPlaceholder = "generation backend not configured; returning local placeholder."

// Generator produces chat completions via an OpenAI-compatible API.
// Generate never fails: an unconfigured or unreachable backend degrades
// to a placeholder string so the chat flow keeps its 200 contract.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// GeneratorConfig holds the generation backend settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewGenerator creates a chat-completion client. With an empty BaseURL or
// APIKey the generator stays in placeholder mode.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	g := &Generator{model: cfg.Model, logger: cfg.Logger}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}

	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return g
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = &http.Client{Timeout: generateTimeout}
	g.client = openai.NewClientWithConfig(clientCfg)
	return g
}

// Configured reports whether a remote backend is wired in.
func (g *Generator) Configured() bool {
	return g.client != nil
}

// Generate produces a reply for the given messages. It always returns a
// usable string: placeholder when unconfigured, an inline error description
// on transport failure. It never returns an error.
func (g *Generator) Generate(ctx context.Context, messages []domain.ChatMessage) string {
	if g.client == nil {
		return generationPlaceholder
	}

	req := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.logger.Warn("generation backend failed, degrading to inline error",
			zap.String("model", g.model),
			zap.Error(err),
		)
		return fmt.Sprintf("(generation error: %v)", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "(no content)"
	}
	return resp.Choices[0].Message.Content
}
