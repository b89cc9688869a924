package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"smart-librarian/internal/models"
)

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db             *chromem.DB
	collection     *chromem.Collection
	embed          chromem.EmbeddingFunc
	dbPath         string
	collectionName string
}

// NewVectorDBManager opens the persistent database at dbPath, creating the
// directory if absent, and gets or creates the named collection. An empty
// dbPath keeps everything in memory.
func NewVectorDBManager(dbPath, collectionName string, compress bool, embed chromem.EmbeddingFunc) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if dbPath == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	m := &VectorDBManager{
		db:             db,
		embed:          embed,
		dbPath:         dbPath,
		collectionName: collectionName,
	}
	if _, err := m.GetOrCreateCollection(); err != nil {
		return nil, err
	}
	return m, nil
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection() (*chromem.Collection, error) {
	metadata := map[string]string{models.MetaSpace: models.CosineSpace}
	c, err := m.db.GetOrCreateCollection(m.collectionName, metadata, m.embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	m.collection = c
	return c, nil
}

// Reset drops the collection with all its chunks and recreates it empty.
func (m *VectorDBManager) Reset() error {
	if err := m.db.DeleteCollection(m.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	_, err := m.GetOrCreateCollection()
	return err
}

// Upsert stores chunks, replacing in place any chunk whose id is already
// present so that no id is ever stored twice.
func (m *VectorDBManager) Upsert(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(chunks))
	var existing []string
	for _, chunk := range chunks {
		if m.Has(ctx, chunk.ID) {
			existing = append(existing, chunk.ID)
		}
		docs = append(docs, chromem.Document{
			ID:       chunk.ID,
			Content:  chunk.Content,
			Metadata: chunk.Metadata(),
		})
	}

	if len(existing) > 0 {
		log.Debug().Int("count", len(existing)).Msg("Replacing existing chunks")
		if err := m.collection.Delete(ctx, nil, nil, existing...); err != nil {
			return fmt.Errorf("failed to delete existing chunks: %w", err)
		}
	}

	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Has reports whether a chunk with id is stored. GetByID fails only for an
// empty id or an id that is not in the collection.
func (m *VectorDBManager) Has(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	_, err := m.collection.GetByID(ctx, id)
	return err == nil
}

// Count returns the number of stored chunks.
func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// Query returns up to k chunks nearest to text by cosine similarity.
func (m *VectorDBManager) Query(ctx context.Context, text string, k int) ([]chromem.Result, error) {
	n := min(k, m.Count())
	if n <= 0 {
		return nil, nil
	}
	return m.SearchWithQueryOptions(ctx, chromem.QueryOptions{
		QueryText: text,
		NResults:  n,
	})
}

// SearchWithQueryOptions performs a similarity search.
func (m *VectorDBManager) SearchWithQueryOptions(ctx context.Context, opts chromem.QueryOptions) ([]chromem.Result, error) {
	// exit if query or embedding is not provided
	if opts.QueryText == "" && opts.QueryEmbedding == nil {
		return nil, fmt.Errorf("either query or embedding must be provided")
	}

	results, err := m.collection.QueryWithOptions(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}
	return results, nil
}
