package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mthotham/assistant/embedding"
	"github.com/mthotham/assistant/intent"
	"github.com/mthotham/assistant/llm_service"
	"github.com/mthotham/assistant/vectorstore"
)

// topK is the fixed number of chunks retrieved per question.
const topK = 4

// AnswerResult is the response to one question. Transient; never persisted.
type AnswerResult struct {
	OK       bool   `json:"ok"`
	Question string `json:"question"`
	Intent   string `json:"intent"`
	Answer   string `json:"answer"`
	Model    string `json:"model"`
	Time     string `json:"time"`
}

// Pipeline answers a question in one synchronous retrieve-then-generate
// round trip: embed the question, fetch the most similar chunks, render the
// prompt, call the model. Any collaborator failure propagates to the caller;
// there is no retry loop or fallback answer at this layer.
type Pipeline struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	llm      llm_service.LLMService
	location *time.Location
	logger   *slog.Logger
}

func NewPipeline(embedder embedding.Embedder, store vectorstore.Store,
	llm llm_service.LLMService, location *time.Location, logger *slog.Logger) *Pipeline {
	if location == nil {
		location = time.UTC
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		llm:      llm,
		location: location,
		logger:   logger,
	}
}

// Answer resolves the intent (caller override wins), retrieves context and
// generates the answer.
func (p *Pipeline) Answer(ctx context.Context, question, intentOverride string) (AnswerResult, error) {
	resolvedIntent := intentOverride
	if resolvedIntent == "" {
		resolvedIntent = intent.Classify(question)
	}

	queryVector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("embedding question: %w", err)
	}

	results, err := p.store.Search(ctx, queryVector, topK)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("retrieving context: %w", err)
	}

	contextParts := make([]string, 0, len(results))
	for _, r := range results {
		contextParts = append(contextParts, r.Text)
	}
	prompt := renderPrompt(strings.Join(contextParts, "\n\n"), question)

	p.logger.Debug("Generating answer",
		slog.String("intent", resolvedIntent),
		slog.Int("retrieved_chunks", len(results)))

	output, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("generating answer: %w", err)
	}

	return AnswerResult{
		OK:       true,
		Question: question,
		Intent:   resolvedIntent,
		Answer:   strings.TrimSpace(output),
		Model:    p.llm.ModelName(),
		Time:     time.Now().In(p.location).Format(time.RFC3339),
	}, nil
}
