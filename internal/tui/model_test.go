package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-librarian/internal/librarian"
)

type fakeAsker struct {
	resp *librarian.Response
	err  error
	reqs []librarian.Request
}

func (f *fakeAsker) Ask(_ context.Context, req librarian.Request) (*librarian.Response, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

func typed(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func TestEnter_AsksWithToggles(t *testing.T) {
	asker := &fakeAsker{resp: &librarian.Response{Hypothetical: "A guess.", Answer: "Gatsby longs for Daisy."}}
	m := sized(New(context.Background(), asker))

	m, _ = press(m, tea.KeyCtrlY)
	m, _ = press(m, tea.KeyCtrlR)
	m = typed(m, "Theme of Gatsby?")

	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "Thinking...", m.status)

	next, _ := m.Update(cmd())
	m = next.(Model)

	require.Len(t, asker.reqs, 1)
	assert.Equal(t, librarian.Request{Question: "Theme of Gatsby?", UseHyDE: true, ReadAloud: true}, asker.reqs[0])
	assert.False(t, m.busy)
	assert.Equal(t, "Answered.", m.status)

	view := m.renderAnswer()
	assert.Contains(t, view, "HyDE (hypothetical pre-answer)")
	assert.Contains(t, view, "Gatsby longs for Daisy.")
	assert.Contains(t, m.View(), "[x] Enable HyDE")
}

func TestEnter_IgnoredWhileBusy(t *testing.T) {
	m := sized(New(context.Background(), &fakeAsker{}))
	m.busy = true

	_, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
}

func TestAnswer_Blocked(t *testing.T) {
	m := sized(New(context.Background(), &fakeAsker{}))
	next, _ := m.Update(answerMsg{resp: &librarian.Response{Blocked: true, Reasons: []string{"profanity detected: hell"}}})
	m = next.(Model)

	assert.Contains(t, m.status, "was blocked")
	assert.Contains(t, m.renderAnswer(), "- profanity detected: hell")
	assert.NotContains(t, m.renderAnswer(), "Final Answer")
}

func TestAnswer_Errors(t *testing.T) {
	m := sized(New(context.Background(), &fakeAsker{}))

	next, _ := m.Update(answerMsg{err: librarian.ErrEmptyQuestion})
	m = next.(Model)
	assert.Equal(t, "Please type a question.", m.status)

	next, _ = m.Update(answerMsg{err: errors.New("store offline")})
	m = next.(Model)
	assert.Contains(t, m.status, "something went wrong")
	assert.NotContains(t, m.status, "store offline")
	assert.Equal(t, "No answer yet.", m.renderAnswer())
}

func TestAnswer_ReportsAudioPath(t *testing.T) {
	m := sized(New(context.Background(), &fakeAsker{}))
	next, _ := m.Update(answerMsg{resp: &librarian.Response{Answer: "Yes.", AudioPath: "data/answer.wav"}})
	assert.Contains(t, next.(Model).status, "data/answer.wav")
}

func TestCtrlC_Quits(t *testing.T) {
	m := New(context.Background(), &fakeAsker{})
	_, cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_LoadingUntilSized(t *testing.T) {
	assert.Equal(t, "Loading...", New(context.Background(), &fakeAsker{}).View())
}
