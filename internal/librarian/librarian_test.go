package librarian

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-librarian/internal/models"
	"smart-librarian/internal/safety"
)

type fakeSearch struct {
	answer    *models.Answer
	err       error
	questions []string
	hyde      []bool
}

func (f *fakeSearch) Query(_ context.Context, question string, useHyDE bool) (*models.Answer, error) {
	f.questions = append(f.questions, question)
	f.hyde = append(f.hyde, useHyDE)
	return f.answer, f.err
}

type fakeSpeaker struct {
	path  string
	err   error
	texts []string
}

func (f *fakeSpeaker) Synthesize(_ context.Context, text string) (string, error) {
	f.texts = append(f.texts, text)
	return f.path, f.err
}

func TestAsk_EmptyQuestionMakesNoCalls(t *testing.T) {
	search := &fakeSearch{}
	speaker := &fakeSpeaker{}
	l := NewLibrarian(search, safety.NewFilter([]string{"damn"}, nil), speaker)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := l.Ask(context.Background(), Request{Question: q, ReadAloud: true})
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	}
	assert.Empty(t, search.questions)
	assert.Empty(t, speaker.texts)
}

func TestAsk_BlockedQuestionSkipsSearch(t *testing.T) {
	search := &fakeSearch{}
	l := NewLibrarian(search, safety.NewFilter([]string{"damn", "stupid"}, nil), nil)

	resp, err := l.Ask(context.Background(), Request{Question: "what a stupid damn book"})
	require.NoError(t, err)

	assert.True(t, resp.Blocked)
	assert.Equal(t, []string{"profanity detected: damn, stupid"}, resp.Reasons)
	assert.Empty(t, resp.Answer)
	assert.Empty(t, search.questions)
}

func TestAsk_AnswersAndSpeaks(t *testing.T) {
	search := &fakeSearch{answer: &models.Answer{Hypothetical: "A desert planet.", Answer: "Dune is about Arrakis."}}
	speaker := &fakeSpeaker{path: "data/answer.wav"}
	l := NewLibrarian(search, safety.NewFilter(nil, nil), speaker)

	resp, err := l.Ask(context.Background(), Request{Question: "  What is Dune about?  ", UseHyDE: true, ReadAloud: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"What is Dune about?"}, search.questions)
	assert.Equal(t, []bool{true}, search.hyde)
	assert.False(t, resp.Blocked)
	assert.Equal(t, "A desert planet.", resp.Hypothetical)
	assert.Equal(t, "Dune is about Arrakis.", resp.Answer)
	assert.Equal(t, []string{"Dune is about Arrakis."}, speaker.texts)
	assert.Equal(t, "data/answer.wav", resp.AudioPath)

	_, err = uuid.Parse(resp.SessionID)
	assert.NoError(t, err)
}

func TestAsk_SpeechFailureKeepsAnswer(t *testing.T) {
	search := &fakeSearch{answer: &models.Answer{Answer: "Emma meddles."}}
	speaker := &fakeSpeaker{err: errors.New("no engine")}
	l := NewLibrarian(search, nil, speaker)

	resp, err := l.Ask(context.Background(), Request{Question: "Who is Emma?", ReadAloud: true})
	require.NoError(t, err)
	assert.Equal(t, "Emma meddles.", resp.Answer)
	assert.Empty(t, resp.AudioPath)
}

func TestAsk_NoSpeechUnlessRequested(t *testing.T) {
	search := &fakeSearch{answer: &models.Answer{Answer: "Yes."}}
	speaker := &fakeSpeaker{path: "x.wav"}
	l := NewLibrarian(search, nil, speaker)

	resp, err := l.Ask(context.Background(), Request{Question: "Is it good?"})
	require.NoError(t, err)
	assert.Empty(t, speaker.texts)
	assert.Empty(t, resp.AudioPath)
}

func TestAsk_SearchErrorPropagates(t *testing.T) {
	boom := errors.New("store offline")
	l := NewLibrarian(&fakeSearch{err: boom}, nil, nil)

	_, err := l.Ask(context.Background(), Request{Question: "anything"})
	assert.ErrorIs(t, err, boom)
}
