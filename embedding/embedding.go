package embedding

import "context"

// Embedder maps text to fixed-length vectors. All chunks persisted in one
// collection must come from the same embedder; switching models requires a
// full re-ingestion.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}
