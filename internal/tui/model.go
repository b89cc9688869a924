package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"smart-librarian/internal/librarian"
)

// Asker is the librarian as seen by the terminal UI.
type Asker interface {
	Ask(ctx context.Context, req librarian.Request) (*librarian.Response, error)
}

type answerMsg struct {
	resp *librarian.Response
	err  error
}

// Model is the Bubble Tea model for the terminal UI.
type Model struct {
	ctx      context.Context
	asker    Asker
	input    textinput.Model
	viewport viewport.Model
	useHyDE  bool
	speak    bool
	busy     bool
	ready    bool
	status   string
	last     *librarian.Response
}

func New(ctx context.Context, asker Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "e.g., What is the main theme of The Great Gatsby?"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		ctx:      ctx,
		asker:    asker,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Ask questions about books. ctrl+y HyDE, ctrl+r read aloud, ctrl+c quit.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + toggles, status, input, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case answerMsg:
		m.busy = false
		m.applyAnswer(msg)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlY:
			m.useHyDE = !m.useHyDE
			return m, nil
		case tea.KeyCtrlR:
			m.speak = !m.speak
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			return m, m.ask(librarian.Request{
				Question:  m.input.Value(),
				UseHyDE:   m.useHyDE,
				ReadAloud: m.speak,
			})
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(req librarian.Request) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.asker.Ask(m.ctx, req)
		return answerMsg{resp: resp, err: err}
	}
}

func (m *Model) applyAnswer(msg answerMsg) {
	switch {
	case errors.Is(msg.err, librarian.ErrEmptyQuestion):
		m.status = "Please type a question."
	case msg.err != nil:
		m.status = "Error: something went wrong while answering."
		m.last = nil
	case msg.resp.Blocked:
		m.status = "Your input appears to contain inappropriate language and was blocked."
		m.last = msg.resp
	default:
		m.status = "Answered."
		if msg.resp.AudioPath != "" {
			m.status = "Answered. Audio saved to " + msg.resp.AudioPath
		}
		m.last = msg.resp
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Smart Librarian")
	toggles := dimStyle.Render(toggle("Enable HyDE", m.useHyDE) + "  " + toggle("Read the answer aloud", m.speak))
	answer := answerBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + toggles + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	r := m.last
	if r == nil {
		return "No answer yet."
	}
	var sb strings.Builder
	if r.Blocked {
		sb.WriteString(headingStyle.Render("Why was it blocked?"))
		for _, reason := range r.Reasons {
			sb.WriteString("\n- " + reason)
		}
		return sb.String()
	}
	if r.Hypothetical != "" {
		sb.WriteString(headingStyle.Render("HyDE (hypothetical pre-answer)"))
		sb.WriteString("\n" + r.Hypothetical + "\n\n")
	}
	sb.WriteString(headingStyle.Render("Final Answer"))
	sb.WriteString("\n" + r.Answer)
	return sb.String()
}

func toggle(label string, on bool) string {
	if on {
		return "[x] " + label
	}
	return "[ ] " + label
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, asker Asker) error {
	_, err := tea.NewProgram(New(ctx, asker), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
