package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"smart-librarian/internal/models"
	"smart-librarian/internal/parser"
)

// Store is the writer side of the vector collection.
type Store interface {
	Upsert(ctx context.Context, chunks []models.Chunk) error
	Reset() error
}

// Stats summarizes one ingestion run.
type Stats struct {
	Files  int
	Chunks int
}

type Ingestor struct {
	parser  parser.Parser
	store   Store
	dataDir string
}

func NewIngestor(p parser.Parser, store Store, dataDir string) *Ingestor {
	return &Ingestor{parser: p, store: store, dataDir: dataDir}
}

// Ingest indexes every PDF of the data directory. With reset the collection
// is emptied first. The first unreadable PDF aborts the run.
func (i *Ingestor) Ingest(ctx context.Context, reset bool) (Stats, error) {
	var stats Stats
	if reset {
		log.Info().Msg("Resetting vector collection")
		if err := i.store.Reset(); err != nil {
			return stats, err
		}
	}

	files, err := i.PDFFiles()
	if err != nil {
		return stats, err
	}

	for _, path := range files {
		chunks, err := i.ChunkFile(path)
		if err != nil {
			return stats, err
		}
		if err := i.store.Upsert(ctx, chunks); err != nil {
			return stats, fmt.Errorf("failed to store chunks of %s: %w", path, err)
		}
		stats.Files++
		stats.Chunks += len(chunks)
		log.Info().Str("file", filepath.Base(path)).Int("chunks", len(chunks)).Msg("Ingested document")
	}

	log.Info().Int("files", stats.Files).Int("chunks", stats.Chunks).Msg("Ingestion finished")
	return stats, nil
}

// PDFFiles lists the .pdf files directly inside the data directory.
func (i *Ingestor) PDFFiles() ([]string, error) {
	entries, err := os.ReadDir(i.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(i.dataDir, e.Name()))
	}
	return files, nil
}

// ChunkFile parses one PDF into its titled chunks.
func (i *Ingestor) ChunkFile(path string) ([]models.Chunk, error) {
	doc, err := i.parser.ParsePDF(path)
	if err != nil {
		return nil, err
	}
	chunks := i.parser.ChunkDocument(doc)
	for _, c := range chunks {
		log.Debug().Str("id", c.ID).Str("page_range", c.PageRange).Int("chars", len(c.Content)).Msg("Chunk")
	}
	return chunks, nil
}
