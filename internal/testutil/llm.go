package testutil

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// LLMCall is one recorded GenerateContent invocation.
type LLMCall struct {
	Messages []llms.MessageContent
	Options  llms.CallOptions
}

// FakeLLM is an llms.Model replying with Responses in order; the last one
// repeats once they run out.
type FakeLLM struct {
	Responses []string
	Err       error
	Calls     []LLMCall
}

func (f *FakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var opts llms.CallOptions
	for _, o := range options {
		o(&opts)
	}
	f.Calls = append(f.Calls, LLMCall{Messages: messages, Options: opts})
	if f.Err != nil {
		return nil, f.Err
	}

	text := ""
	if n := len(f.Responses); n > 0 {
		text = f.Responses[min(len(f.Calls)-1, n-1)]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: text}}}, nil
}

func (f *FakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

// Text joins the text parts of a message.
func Text(m llms.MessageContent) string {
	var parts []string
	for _, p := range m.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "")
}
