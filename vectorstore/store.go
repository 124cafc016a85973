package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mthotham/assistant/config"
)

// Record is one persisted (vector, text, metadata) triple. All records in a
// collection carry vectors of the same dimensionality.
type Record struct {
	ID        string
	Text      string
	Metadata  map[string]string
	Embedding []float32
}

// SearchResult is one retrieved chunk, highest similarity first. Ties are
// broken by the backend's native order.
type SearchResult struct {
	Text       string
	Metadata   map[string]string
	Similarity float32
}

// Store persists embedded chunks under a fixed collection name and answers
// nearest-neighbour queries against them.
type Store interface {
	// Rebuild replaces the whole collection with the given records.
	Rebuild(ctx context.Context, records []Record) error

	// Search returns up to topK records most similar to the embedding.
	Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error)

	Close()
}

// New selects a backend from the configuration: "local" keeps the
// collection on disk, "pgvector" keeps it in Postgres.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.VectorStore {
	case "local":
		return NewChromemStore(cfg.VectorStoreDir, cfg.CollectionName, logger)
	case "pgvector":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the pgvector store")
		}
		return NewPgvectorStore(ctx, cfg.DatabaseURL, cfg.CollectionName, logger)
	default:
		return nil, fmt.Errorf("unsupported vector store type: %s", cfg.VectorStore)
	}
}
