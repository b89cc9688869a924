package librarian

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"smart-librarian/internal/helper"
	"smart-librarian/internal/models"
	"smart-librarian/internal/safety"
)

var ErrEmptyQuestion = errors.New("please type a question")

// Searcher answers a question from the book collection.
type Searcher interface {
	Query(ctx context.Context, question string, useHyDE bool) (*models.Answer, error)
}

// Screener decides whether a question may reach the search.
type Screener interface {
	Check(ctx context.Context, text string) safety.Result
}

// Speaker turns the final answer into an audio file.
type Speaker interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

type Request struct {
	Question  string `json:"question" validate:"required"`
	UseHyDE   bool   `json:"hyde"`
	ReadAloud bool   `json:"speak"`
}

type Response struct {
	SessionID    string   `json:"session_id"`
	Blocked      bool     `json:"blocked"`
	Reasons      []string `json:"reasons,omitempty"`
	Hypothetical string   `json:"hyde,omitempty"`
	Answer       string   `json:"answer,omitempty"`
	AudioPath    string   `json:"audio_path,omitempty"`
}

type Librarian struct {
	search   Searcher
	screen   Screener
	speaker  Speaker
	validate *validator.Validate
}

// NewLibrarian wires the surfaces to the pipeline. speaker may be nil, in
// which case read-aloud requests are answered without audio.
func NewLibrarian(search Searcher, screen Screener, speaker Speaker) *Librarian {
	return &Librarian{
		search:   search,
		screen:   screen,
		speaker:  speaker,
		validate: validator.New(),
	}
}

// Ask runs one question through validation, the safety gate, the search and
// the optional speech step. A blocked question returns a Response with
// Blocked set and no error.
func (l *Librarian) Ask(ctx context.Context, req Request) (*Response, error) {
	req.Question = strings.TrimSpace(req.Question)
	if err := l.validate.Struct(req); err != nil {
		return nil, ErrEmptyQuestion
	}

	sessionID, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	resp := &Response{SessionID: sessionID}
	logger := log.With().Str("session", sessionID).Logger()

	if l.screen != nil {
		if verdict := l.screen.Check(ctx, req.Question); verdict.Blocked {
			logger.Info().Strs("reasons", verdict.Reasons).Msg("Question blocked")
			resp.Blocked = true
			resp.Reasons = verdict.Reasons
			return resp, nil
		}
	}

	logger.Info().Bool("hyde", req.UseHyDE).Msg("Answering question")
	answer, err := l.search.Query(ctx, req.Question, req.UseHyDE)
	if err != nil {
		return nil, err
	}
	resp.Hypothetical = answer.Hypothetical
	resp.Answer = answer.Answer

	if req.ReadAloud && l.speaker != nil && resp.Answer != "" {
		path, err := l.speaker.Synthesize(ctx, resp.Answer)
		if err != nil {
			logger.Error().Err(err).Msg("Speech synthesis failed")
		} else {
			resp.AudioPath = path
		}
	}
	return resp, nil
}
