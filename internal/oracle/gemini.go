// Package oracle adapts the Gemini API to the policy engine's Oracle
// interface.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Gemini asks one-shot relevance questions. Every call is bounded by the
// configured timeout so a hung call cannot stall the harvest loop.
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With("oracle", cfg.Model),
	}, nil
}

func (g *Gemini) Ask(ctx context.Context, question string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.client.Models.GenerateContent(callCtx, g.model, genai.Text(question), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty oracle response")
	}

	answer := result.Candidates[0].Content.Parts[0].Text
	g.logger.Debug("oracle answered", "answer", answer)
	return answer, nil
}
