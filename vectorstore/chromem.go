package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philippgille/chromem-go"
)

// ChromemStore keeps the collection in a chromem-go database persisted under
// a local directory. This is the default backend and needs no external
// services.
type ChromemStore struct {
	db         *chromem.DB
	collection string
	logger     *slog.Logger
}

func NewChromemStore(dir, collection string, logger *slog.Logger) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store at %s: %w", dir, err)
	}
	return &ChromemStore{
		db:         db,
		collection: collection,
		logger:     logger,
	}, nil
}

func (s *ChromemStore) Rebuild(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to rebuild collection %q from zero records", s.collection)
	}

	if err := s.db.DeleteCollection(s.collection); err != nil {
		return fmt.Errorf("failed to drop collection %q: %w", s.collection, err)
	}

	// No embedding func: vectors are computed upstream and stored as-is.
	coll, err := s.db.CreateCollection(s.collection, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", s.collection, err)
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, chromem.Document{
			ID:        rec.ID,
			Metadata:  rec.Metadata,
			Embedding: rec.Embedding,
			Content:   rec.Text,
		})
	}

	if err := coll.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add documents to collection %q: %w", s.collection, err)
	}

	s.logger.Info("Vector collection rebuilt",
		slog.String("collection", s.collection),
		slog.Int("records", len(records)))
	return nil
}

func (s *ChromemStore) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	coll := s.db.GetCollection(s.collection, nil)
	if coll == nil {
		return nil, fmt.Errorf("collection %q does not exist (run ingestion first)", s.collection)
	}

	count := coll.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := coll.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			Text:       r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}
	return out, nil
}

func (s *ChromemStore) Close() {}
