package llm

import (
	"context"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/atelier-ai/atelier-engine/pkg/models"
)

// AnthropicClient is the Anthropic-backed generation client. Anthropic has
// no developer role and takes system text out of band, so system and
// developer messages are folded into the request's system prompt in order.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// AnthropicConfig holds configuration for the Anthropic generation client.
type AnthropicConfig struct {
	APIKey    string
	Model     string // e.g., "claude-3-5-haiku-latest"
	MaxTokens int    // Response cap; defaults to 1024
}

// NewAnthropicClient creates a generation client backed by the Anthropic API.
func NewAnthropicClient(cfg *AnthropicConfig, logger *zap.Logger) *AnthropicClient {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("anthropic"),
	}
}

// GenerateConversation implements GenerationClient.
func (c *AnthropicClient) GenerateConversation(ctx context.Context, messages []models.Message) (string, error) {
	system, chatMessages := splitMessages(messages)

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    system,
		Messages:  chatMessages,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		c.logger.Error("generation request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", ClassifyError(OpGeneration, err)
	}

	reply := resp.GetFirstContentText()
	if strings.TrimSpace(reply) == "" {
		return "", NewError(OpGeneration, "empty completion", false, nil)
	}

	c.logger.Info("generation request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return reply, nil
}

// splitMessages separates out-of-band system text from chat turns. System
// and developer messages join the system prompt in order. The Messages API
// requires the first chat message to use the user role, so assistant
// messages before the first user turn (the seeded greeting on a fresh
// conversation) are folded into the system prompt as well.
func splitMessages(messages []models.Message) (system string, chat []anthropic.Message) {
	var systemParts []string
	chat = make([]anthropic.Message, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem, models.RoleDeveloper:
			systemParts = append(systemParts, m.Content)
		case models.RoleAssistant:
			if len(chat) == 0 {
				systemParts = append(systemParts, "You opened the conversation with:\n"+m.Content)
				continue
			}
			chat = append(chat, anthropic.NewAssistantTextMessage(m.Content))
		default:
			chat = append(chat, anthropic.NewUserTextMessage(m.Content))
		}
	}

	return strings.Join(systemParts, "\n\n---\n\n"), chat
}

var _ GenerationClient = (*AnthropicClient)(nil)
