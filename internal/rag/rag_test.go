package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"smart-librarian/internal/chromemdb"
	"smart-librarian/internal/models"
	"smart-librarian/internal/testutil"
)

type fakeRetriever struct {
	results []chromem.Result
	err     error
	queries []string
	ks      []int
}

func (f *fakeRetriever) Query(_ context.Context, text string, k int) ([]chromem.Result, error) {
	f.queries = append(f.queries, text)
	f.ks = append(f.ks, k)
	return f.results, f.err
}

type fakeHyDE struct {
	text  string
	err   error
	calls int
}

func (f *fakeHyDE) Generate(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func twoResults() []chromem.Result {
	return []chromem.Result{
		{ID: "Dune-0-0", Content: "Paul Atreides on Arrakis.", Metadata: map[string]string{"title": "Dune", "page_range": "1"}},
		{ID: "Emma-1-0", Content: "Emma meddles in romance.", Metadata: map[string]string{"title": "Emma", "page_range": "?"}},
	}
}

func TestQuery_WithoutHyDEUsesRawQuestion(t *testing.T) {
	retriever := &fakeRetriever{results: twoResults()}
	hyde := &fakeHyDE{text: "unused"}
	llm := &testutil.FakeLLM{Responses: []string{" Paul fights for Arrakis. "}}

	r := NewRAG(retriever, hyde, llm)
	answer, err := r.Query(context.Background(), "Who is Paul?", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"Who is Paul?"}, retriever.queries)
	assert.Equal(t, []int{4}, retriever.ks)
	assert.Zero(t, hyde.calls)
	assert.Empty(t, answer.Hypothetical)
	assert.Equal(t, "Paul fights for Arrakis.", answer.Answer)
}

func TestQuery_WithHyDEEnrichesRetrievalQuery(t *testing.T) {
	retriever := &fakeRetriever{results: twoResults()}
	hyde := &fakeHyDE{text: "Paul is the heir of House Atreides."}
	llm := &testutil.FakeLLM{Responses: []string{"Paul is a duke's son."}}

	r := NewRAG(retriever, hyde, llm, WithTopK(2))
	answer, err := r.Query(context.Background(), "Who is Paul?", true)
	require.NoError(t, err)

	assert.Equal(t, 1, hyde.calls)
	assert.Equal(t, []string{"Who is Paul?\n\nHypothetical relevant answer:\nPaul is the heir of House Atreides."}, retriever.queries)
	assert.Equal(t, []int{2}, retriever.ks)
	assert.Equal(t, "Paul is the heir of House Atreides.", answer.Hypothetical)
	assert.Equal(t, "Paul is a duke's son.", answer.Answer)
}

func TestQuery_PromptConstruction(t *testing.T) {
	retriever := &fakeRetriever{results: twoResults()}
	llm := &testutil.FakeLLM{Responses: []string{"ok"}}

	_, err := NewRAG(retriever, nil, llm).Query(context.Background(), "Who is Paul?", true)
	require.NoError(t, err)

	require.Len(t, llm.Calls, 1)
	call := llm.Calls[0]
	require.Len(t, call.Messages, 2)

	assert.Equal(t, llms.ChatMessageTypeSystem, call.Messages[0].Role)
	system := testutil.Text(call.Messages[0])
	assert.Contains(t, system, "ONLY the provided context")
	assert.Contains(t, system, models.FallbackAnswer)

	assert.Equal(t, llms.ChatMessageTypeHuman, call.Messages[1].Role)
	user := testutil.Text(call.Messages[1])
	assert.Contains(t, user, "Question:\nWho is Paul?")
	assert.Contains(t, user, "Paul Atreides on Arrakis.\n\nEmma meddles in romance.")
	assert.NotContains(t, user, "Dune-0-0")

	assert.InDelta(t, 0.2, call.Options.Temperature, 1e-9)
	assert.Equal(t, 350, call.Options.MaxTokens)
}

func TestQuery_CountsPromptTokens(t *testing.T) {
	var counted string
	counter := func(text string) (int, error) {
		counted = text
		return 42, nil
	}
	llm := &testutil.FakeLLM{Responses: []string{"ok"}}

	_, err := NewRAG(&fakeRetriever{results: twoResults()}, nil, llm, WithTokenCounter(counter)).
		Query(context.Background(), "Who is Paul?", false)
	require.NoError(t, err)
	assert.Contains(t, counted, "Who is Paul?")
	assert.Contains(t, counted, "Emma meddles in romance.")
}

func TestQuery_ErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")

	t.Run("hyde", func(t *testing.T) {
		llm := &testutil.FakeLLM{}
		r := NewRAG(&fakeRetriever{}, &fakeHyDE{err: boom}, llm)
		_, err := r.Query(context.Background(), "q", true)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, llm.Calls)
	})

	t.Run("retrieval", func(t *testing.T) {
		llm := &testutil.FakeLLM{}
		r := NewRAG(&fakeRetriever{err: boom}, nil, llm)
		_, err := r.Query(context.Background(), "q", false)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, llm.Calls)
	})

	t.Run("completion", func(t *testing.T) {
		r := NewRAG(&fakeRetriever{results: twoResults()}, nil, &testutil.FakeLLM{Err: boom})
		_, err := r.Query(context.Background(), "q", false)
		assert.ErrorIs(t, err, boom)
	})
}

// An unrelated question still reaches the model with the fallback instruction
// and the relevant context absent.
func TestQuery_UnrelatedQuestionAgainstStore(t *testing.T) {
	ctx := context.Background()
	store, err := chromemdb.NewVectorDBManager(t.TempDir(), "books", false, testutil.HashEmbed)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []models.Chunk{
		{ID: "Dune-0-0", Title: "Dune", Source: "a.pdf", PageRange: "1", Content: "spice desert sandworms"},
	}))

	llm := &testutil.FakeLLM{Responses: []string{models.FallbackAnswer}}
	answer, err := NewRAG(store, nil, llm).Query(ctx, "What is the capital of France?", false)
	require.NoError(t, err)

	assert.Equal(t, models.FallbackAnswer, answer.Answer)
	require.Len(t, llm.Calls, 1)
	assert.Contains(t, testutil.Text(llm.Calls[0].Messages[0]), models.FallbackAnswer)
}

func TestRetrievalQuery(t *testing.T) {
	assert.Equal(t, "q", RetrievalQuery("q", ""))
	assert.Equal(t, "q\n\nHypothetical relevant answer:\nh", RetrievalQuery("q", "h"))
}
