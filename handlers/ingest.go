package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mthotham/assistant/ingest"
	"github.com/mthotham/assistant/notify"
)

// Ingestor is the slice of the ingestion pipeline the HTTP layer needs.
type Ingestor interface {
	Run(ctx context.Context, opts ingest.Options) (ingest.Result, error)
	DefaultFiles() []string
}

// IngestRequest is the body of POST /ingest.
type IngestRequest struct {
	IncludeCrawl bool     `json:"include_crawl"`
	CrawlDepth   int      `json:"crawl_depth"`
	ExtraPaths   []string `json:"extra_paths"`
}

// IngestHandler triggers full index rebuilds and lists the default corpus
// files. When an SMS notifier is configured it texts the run outcome to the
// admin number.
type IngestHandler struct {
	pipeline Ingestor
	notifier *notify.SMSNotifier
	logger   *slog.Logger
}

func NewIngestHandler(pipeline Ingestor, notifier *notify.SMSNotifier, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		pipeline: pipeline,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *IngestHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	req := IngestRequest{CrawlDepth: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("Failed to decode ingest request",
				slog.String("error", err.Error()))
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	h.logger.Info("Ingest request received",
		slog.Bool("include_crawl", req.IncludeCrawl),
		slog.Int("crawl_depth", req.CrawlDepth),
		slog.Int("extra_paths", len(req.ExtraPaths)))

	result, err := h.pipeline.Run(r.Context(), ingest.Options{
		IncludeCrawl: req.IncludeCrawl,
		CrawlDepth:   req.CrawlDepth,
		ExtraPaths:   req.ExtraPaths,
	})
	if err != nil {
		h.logger.Error("Ingestion failed",
			slog.String("error", err.Error()))
		http.Error(w, "Ingestion failed", http.StatusInternalServerError)
		return
	}

	h.notifyResult(result)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *IngestHandler) HandleDefaultFiles(w http.ResponseWriter, r *http.Request) {
	files := h.pipeline.DefaultFiles()
	if files == nil {
		files = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"scanned_files": files})
}

func (h *IngestHandler) notifyResult(result ingest.Result) {
	if h.notifier == nil {
		return
	}

	var message string
	if result.OK {
		message = fmt.Sprintf("Ingestion complete: %d documents, %d chunks.", result.Documents, result.Chunks)
	} else {
		message = "Ingestion failed: " + result.Message
	}
	if err := h.notifier.Send(message); err != nil {
		h.logger.Warn("Ingest notification not delivered",
			slog.String("error", err.Error()))
	}
}
