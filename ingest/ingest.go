package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mthotham/assistant/chunker"
	"github.com/mthotham/assistant/config"
	"github.com/mthotham/assistant/document"
	"github.com/mthotham/assistant/embedding"
	"github.com/mthotham/assistant/vectorstore"
)

// Options controls one ingestion run.
type Options struct {
	IncludeCrawl bool
	CrawlDepth   int
	ExtraPaths   []string
}

// Result reports the outcome of an ingestion run. An empty corpus yields
// OK=false with an explanatory message and no index mutation; collaborator
// failures are returned as errors instead.
type Result struct {
	OK             bool   `json:"ok"`
	Message        string `json:"message"`
	Documents      int    `json:"documents,omitempty"`
	Chunks         int    `json:"chunks,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// Pipeline rebuilds the vector collection from scratch: scan, load,
// optionally crawl, chunk, embed, replace. Everything runs as one
// synchronous sequence.
type Pipeline struct {
	dataDir     string
	legacyPaths []string
	crawlSeeds  []string
	collection  string
	loader      *document.Loader
	crawler     *document.Crawler
	splitter    *chunker.RecursiveSplitter
	embedder    embedding.Embedder
	store       vectorstore.Store
	logger      *slog.Logger
}

func New(cfg config.Config, loader *document.Loader, crawler *document.Crawler,
	splitter *chunker.RecursiveSplitter, embedder embedding.Embedder,
	store vectorstore.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		dataDir:     cfg.DataDir,
		legacyPaths: cfg.LegacyLocalFiles,
		crawlSeeds:  cfg.CrawlSeedURLs,
		collection:  cfg.CollectionName,
		loader:      loader,
		crawler:     crawler,
		splitter:    splitter,
		embedder:    embedder,
		store:       store,
		logger:      logger,
	}
}

// DefaultFiles lists the files an ingest run would pick up from the data
// directory.
func (p *Pipeline) DefaultFiles() []string {
	return document.ScanDataDir(p.dataDir)
}

// Run executes one full rebuild. Re-running on unchanged inputs reproduces
// the same collection; previously indexed content not present in the current
// inputs is dropped.
func (p *Pipeline) Run(ctx context.Context, opts Options) (Result, error) {
	paths := p.DefaultFiles()
	paths = mergePaths(paths, p.legacyPaths)
	paths = mergePaths(paths, opts.ExtraPaths)

	p.logger.Info("Ingesting local files",
		slog.Int("count", len(paths)))
	docs := p.loader.LoadFiles(paths)

	if opts.IncludeCrawl {
		depth := opts.CrawlDepth
		if depth < 1 {
			depth = 1
		}
		docs = append(docs, p.crawler.Crawl(ctx, p.crawlSeeds, depth)...)
	}

	if len(docs) == 0 {
		return Result{
			OK:      false,
			Message: fmt.Sprintf("no documents to ingest (is %s empty?)", p.dataDir),
		}, nil
	}

	chunks := p.splitter.Split(docs)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("embedding chunks: %w", err)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:        uuid.NewString(),
			Text:      c.Text,
			Metadata:  c.Metadata.AsMap(),
			Embedding: vectors[i],
		}
	}

	if err := p.store.Rebuild(ctx, records); err != nil {
		return Result{}, fmt.Errorf("rebuilding vector collection: %w", err)
	}

	p.logger.Info("Ingestion complete",
		slog.Int("documents", len(docs)),
		slog.Int("chunks", len(chunks)),
		slog.String("collection", p.collection))

	return Result{
		OK:             true,
		Message:        fmt.Sprintf("Ingested %d documents (%d chunks) into collection %q.", len(docs), len(chunks), p.collection),
		Documents:      len(docs),
		Chunks:         len(chunks),
		EmbeddingModel: p.embedder.ModelName(),
	}, nil
}

// mergePaths appends extras not already present, preserving order with
// first-seen-wins deduplication by exact path string.
func mergePaths(paths, extras []string) []string {
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		seen[p] = true
	}
	for _, p := range extras {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}
