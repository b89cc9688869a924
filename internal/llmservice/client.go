package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"smart-librarian/internal/config"
)

var ErrNoChoices = errors.New("llm returned no choices")

// NewLLM creates the chat completion client shared by the generator and the search.
func NewLLM(llmConfig *config.LLMConfig) (*openai.LLM, error) {
	log.Debug().Str("base_url", llmConfig.BaseURL).Str("model", llmConfig.Model).Msg("Creating llm client")
	opts := []openai.Option{
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	}
	if llmConfig.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(llmConfig.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}
	return llm, nil
}

// call llm and return the trimmed text of the first choice
func GenerateText(ctx context.Context, llm llms.Model, messages []llms.MessageContent, options ...llms.CallOption) (string, error) {
	res, err := llm.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(res.Choices[0].Content), nil
}
