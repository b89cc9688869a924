package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"smart-librarian/internal/llmservice"
	"smart-librarian/internal/models"
)

const (
	defaultTopK = 4
	temperature = 0.2
	maxTokens   = 350
)

// Retriever returns the k chunks nearest to a query text.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]chromem.Result, error)
}

// Hypothesizer produces a hypothetical answer for a question.
type Hypothesizer interface {
	Generate(ctx context.Context, question string) (string, error)
}

type RAG struct {
	retriever   Retriever
	hyde        Hypothesizer
	llm         llms.Model
	topK        int
	countTokens func(string) (int, error)
}

type Option func(*RAG)

// WithTopK sets the number of retrieved chunks.
func WithTopK(k int) Option {
	return func(r *RAG) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithTokenCounter logs the prompt size of every answer request.
func WithTokenCounter(count func(string) (int, error)) Option {
	return func(r *RAG) { r.countTokens = count }
}

func NewRAG(retriever Retriever, hyde Hypothesizer, llm llms.Model, opts ...Option) *RAG {
	r := &RAG{retriever: retriever, hyde: hyde, llm: llm, topK: defaultTopK}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RetrievalQuery is the text embedded for nearest-neighbour search.
func RetrievalQuery(question, hypothetical string) string {
	if hypothetical == "" {
		return question
	}
	return question + models.HyDESeparator + hypothetical
}

// ComposePrompt builds the system and user turns of the answer request.
func ComposePrompt(question string, contextBlocks []string) []llms.MessageContent {
	user := fmt.Sprintf(models.SearchUserPromptTemplate, question, strings.Join(contextBlocks, models.ContextSeparator))
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, models.SearchSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
}

// Query answers question from the retrieved chunks. With useHyDE the
// retrieval query is enriched with a hypothetical answer first.
func (r *RAG) Query(ctx context.Context, question string, useHyDE bool) (*models.Answer, error) {
	answer := &models.Answer{}
	if useHyDE && r.hyde != nil {
		hypothetical, err := r.hyde.Generate(ctx, question)
		if err != nil {
			return nil, err
		}
		answer.Hypothetical = hypothetical
	}

	results, err := r.retriever.Query(ctx, RetrievalQuery(question, answer.Hypothetical), r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve chunks: %w", err)
	}

	blocks := make([]string, 0, len(results))
	for _, res := range results {
		blocks = append(blocks, res.Content)
		// citations are logged only; the answer contract carries none
		log.Debug().
			Str("id", res.ID).
			Str("title", res.Metadata[models.MetaTitle]).
			Str("page_range", res.Metadata[models.MetaPageRange]).
			Float32("similarity", res.Similarity).
			Msg("Retrieved chunk")
	}

	messages := ComposePrompt(question, blocks)
	if r.countTokens != nil {
		if n, err := r.countTokens(promptText(messages)); err == nil {
			log.Debug().Int("tokens", n).Msg("Answer prompt size")
		} else {
			log.Debug().Err(err).Msg("Token count unavailable")
		}
	}

	text, err := llmservice.GenerateText(ctx, r.llm, messages,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	answer.Answer = text
	return answer, nil
}

func promptText(messages []llms.MessageContent) string {
	var sb strings.Builder
	for _, m := range messages {
		for _, part := range m.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				sb.WriteString(tc.Text)
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}
