package server

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"smart-librarian/internal/librarian"
)

// Asker is the librarian as seen by the web form.
type Asker interface {
	Ask(ctx context.Context, req librarian.Request) (*librarian.Response, error)
}

type Server struct {
	app       *fiber.App
	asker     Asker
	audioPath string
	markdown  goldmark.Markdown
}

// NewServer builds the single-page web form. audioPath is the file served
// at /audio after a read-aloud answer.
func NewServer(asker Asker, audioPath string) *Server {
	s := &Server{
		asker:     asker,
		audioPath: audioPath,
		markdown:  goldmark.New(),
	}
	s.app = fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})
	s.app.Get("/", s.handleIndex)
	s.app.Post("/ask", s.handleAsk)
	s.app.Get("/audio", s.handleAudio)
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	log.Info().Str("addr", addr).Msg("Web UI listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) handleIndex(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, pageData{})
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	req := librarian.Request{
		Question:  c.FormValue("question"),
		UseHyDE:   c.FormValue("hyde") != "",
		ReadAloud: c.FormValue("speak") != "",
	}
	data := pageData{Question: req.Question, HyDE: req.UseHyDE, Speak: req.ReadAloud}

	resp, err := s.asker.Ask(c.UserContext(), req)
	if errors.Is(err, librarian.ErrEmptyQuestion) {
		data.Error = emptyQuestionMessage
		return render(c, fiber.StatusOK, data)
	}
	if err != nil {
		return err
	}

	if resp.Blocked {
		data.Blocked = true
		data.Reasons = resp.Reasons
		return render(c, fiber.StatusOK, data)
	}

	if req.UseHyDE {
		data.Hypothetical = resp.Hypothetical
	}
	data.Answer = s.renderMarkdown(resp.Answer)
	if resp.AudioPath != "" {
		data.AudioURL = "/audio?session=" + resp.SessionID
	}
	return render(c, fiber.StatusOK, data)
}

func (s *Server) handleAudio(c *fiber.Ctx) error {
	if _, err := os.Stat(s.audioPath); err != nil {
		return fiber.ErrNotFound
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendFile(s.audioPath)
}

// renderMarkdown converts the answer to HTML; raw HTML in the answer is
// dropped by goldmark's default renderer.
func (s *Server) renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		log.Warn().Err(err).Msg("Markdown rendering failed, showing plain text")
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String())
}

func render(c *fiber.Ctx, status int, data pageData) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return err
	}
	c.Status(status)
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
