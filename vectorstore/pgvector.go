package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgvectorStore keeps the collection in a Postgres table with a pgvector
// column, one table per collection name.
type PgvectorStore struct {
	pool   *pgxpool.Pool
	table  string
	logger *slog.Logger
}

func NewPgvectorStore(ctx context.Context, databaseURL, collection string, logger *slog.Logger) (*PgvectorStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &PgvectorStore{
		pool:   pool,
		table:  "chunks_" + collection,
		logger: logger,
	}, nil
}

// Rebuild drops and recreates the collection table in a single transaction,
// then rebuilds the ivfflat index sized to the record count.
func (s *PgvectorStore) Rebuild(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to rebuild table %q from zero records", s.table)
	}
	dimension := len(records[0].Embedding)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to enable pgvector extension: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", s.table)); err != nil {
		return fmt.Errorf("failed to drop table: %w", err)
	}

	createSQL := fmt.Sprintf(`
        CREATE TABLE %s (
            id        UUID PRIMARY KEY,
            content   TEXT NOT NULL,
            metadata  JSONB NOT NULL DEFAULT '{}'::jsonb,
            embedding vector(%d) NOT NULL
        )`, s.table, dimension)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (id, content, metadata, embedding) VALUES ($1, $2, $3, $4)", s.table)
	for _, rec := range records {
		if len(rec.Embedding) != dimension {
			return fmt.Errorf("record %s has dimension %d, expected %d", rec.ID, len(rec.Embedding), dimension)
		}
		metadata, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", rec.ID, err)
		}
		if _, err := tx.Exec(ctx, insertSQL, rec.ID, rec.Text, metadata, pgvector.NewVector(rec.Embedding)); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
		}
	}

	// lists sized to sqrt of the record count, floor of 100, as recommended
	// for ivfflat.
	lists := int(math.Sqrt(float64(len(records))))
	if lists < 100 {
		lists = 100
	}
	indexSQL := fmt.Sprintf(`
        CREATE INDEX idx_%s_embedding
        ON %s
        USING ivfflat (embedding vector_cosine_ops)
        WITH (lists = %d)`, s.table, s.table, lists)
	if _, err := tx.Exec(ctx, indexSQL); err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}

	s.logger.Info("Vector table rebuilt",
		slog.String("table", s.table),
		slog.Int("records", len(records)),
		slog.Int("dimension", dimension),
		slog.Int("lists", lists))
	return nil
}

func (s *PgvectorStore) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	querySQL := fmt.Sprintf(`
        SELECT content, metadata::text, 1 - (embedding <=> $1) AS similarity
        FROM %s
        ORDER BY embedding <=> $1
        LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, querySQL, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var result SearchResult
		var metadata string
		if err := rows.Scan(&result.Text, &metadata, &result.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &result.Metadata); err != nil {
				s.logger.Warn("Failed to parse chunk metadata",
					slog.String("error", err.Error()))
			}
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

func (s *PgvectorStore) Close() {
	s.pool.Close()
}
