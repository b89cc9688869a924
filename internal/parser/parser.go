package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"smart-librarian/internal/config"
	"smart-librarian/internal/models"
)

type Parser interface {
	ParsePDF(filePath string) (models.ParsedPDF, error)
	ChunkDocument(doc models.ParsedPDF) []models.Chunk
}

type ParserConfig struct {
	Config *config.Config
}

// NewParser returns a parser over a copy of cfg with defaults filled in; a
// nil config means all defaults.
func NewParser(cfg *config.Config) *ParserConfig {
	var local config.Config
	if cfg != nil {
		local = *cfg
	}
	local.ApplyDefaults()
	return &ParserConfig{Config: &local}
}

// ParsePDF extracts the text of every page. Pages are joined with a newline
// into the full-document text.
func (p *ParserConfig) ParsePDF(filePath string) (doc models.ParsedPDF, err error) {
	doc = models.ParsedPDF{Source: filepath.Base(filePath)}

	// the pdf reader panics on structurally broken files
	defer func() {
		if r := recover(); r != nil {
			doc = models.ParsedPDF{Source: filepath.Base(filePath)}
			err = fmt.Errorf("failed to read pdf %s: %v", filePath, r)
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return doc, err
	}
	defer f.Close()

	// Get file size for reader initialization
	stat, err := f.Stat()
	if err != nil {
		return doc, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return doc, fmt.Errorf("failed to read pdf %s: %w", filePath, err)
	}

	numPages := reader.NumPage()
	texts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		var pageText string
		if !page.V.IsNull() {
			pageText, err = page.GetPlainText(nil)
			if err != nil {
				return doc, fmt.Errorf("failed to extract page %d of %s: %w", i, filePath, err)
			}
		}
		doc.Pages = append(doc.Pages, models.Page{Number: i, Text: pageText})
		texts = append(texts, pageText)
	}
	doc.FullText = strings.Join(texts, "\n")

	log.Debug().Str("source", doc.Source).Int("pages", numPages).Int("chars", len(doc.FullText)).Msg("Extracted pdf text")
	return doc, nil
}

// ChunkDocument splits a parsed PDF into titled chunks with ids of the form
// <title>-<group index>-<chunk index>.
func (p *ParserConfig) ChunkDocument(doc models.ParsedPDF) []models.Chunk {
	var chunks []models.Chunk
	for i, group := range SplitByTitles(doc.FullText) {
		for j, text := range chunkContent(group.Body, p.Config.RAG.ChunkSize, p.Config.RAG.ChunkOverlap) {
			chunks = append(chunks, models.Chunk{
				ID:        fmt.Sprintf("%s-%d-%d", group.Title, i, j),
				Title:     group.Title,
				Source:    doc.Source,
				PageRange: GuessPageRange(text, doc.Pages, p.Config.RAG.PageProbeChars),
				Content:   text,
			})
		}
	}
	return chunks
}
