// Package hyde generates hypothetical answers used to enrich retrieval
// queries. The text is never shown as ground truth.
package hyde

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"smart-librarian/internal/llmservice"
	"smart-librarian/internal/models"
)

const (
	temperature = 0.6
	maxTokens   = 160
)

type Generator struct {
	llm llms.Model
}

func NewGenerator(llm llms.Model) *Generator {
	return &Generator{llm: llm}
}

// Generate returns a short plausible answer to question.
func (g *Generator) Generate(ctx context.Context, question string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, models.HyDESystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, models.HyDEExampleQuestion),
		llms.TextParts(llms.ChatMessageTypeAI, models.HyDEExampleAnswer),
		llms.TextParts(llms.ChatMessageTypeHuman, question),
	}

	text, err := llmservice.GenerateText(ctx, g.llm, messages,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate hypothetical answer: %w", err)
	}
	log.Debug().Str("hyde", text).Msg("Generated hypothetical answer")
	return text, nil
}
