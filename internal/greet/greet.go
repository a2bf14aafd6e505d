// Package greet produces the report's one-line morning greeting, optionally
// via an OpenAI-compatible chat endpoint.
package greet

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Huahuatgc/ribao/internal/config"
)

const defaultGreeting = "早上好！新的一天也要元气满满哦～"

const greetingPrompt = "请写一句适合放在早晨日报开头的元气问候语，不超过30个字，不要使用引号。"

// Greeter generates the greeting line. With AI disabled it returns the
// static default; with AI enabled any API failure degrades to the same
// default through the aggregator's fallback path.
type Greeter struct {
	cfg    config.AIConfig
	client *openai.Client
	logger *slog.Logger
}

// New creates a Greeter.
func New(cfg config.AIConfig, logger *slog.Logger) *Greeter {
	g := &Greeter{
		cfg:    cfg,
		logger: logger.With("source", "greeting"),
	}
	if cfg.Enabled {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		g.client = openai.NewClientWithConfig(clientCfg)
	}
	return g
}

// Fetch returns the greeting line.
func (g *Greeter) Fetch(ctx context.Context, _ int) (string, error) {
	if g.client == nil {
		return defaultGreeting, nil
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: greetingPrompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	greeting := strings.TrimSpace(resp.Choices[0].Message.Content)
	if greeting == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return greeting, nil
}

// Fallback returns the static greeting.
func (g *Greeter) Fallback(_ int) string {
	return defaultGreeting
}
