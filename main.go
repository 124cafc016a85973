package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mthotham/assistant/chunker"
	"github.com/mthotham/assistant/config"
	"github.com/mthotham/assistant/document"
	"github.com/mthotham/assistant/embedding"
	"github.com/mthotham/assistant/handlers"
	"github.com/mthotham/assistant/ingest"
	"github.com/mthotham/assistant/llm_service"
	"github.com/mthotham/assistant/logging"
	"github.com/mthotham/assistant/notify"
	"github.com/mthotham/assistant/rag"
	"github.com/mthotham/assistant/server"
	"github.com/mthotham/assistant/vectorstore"
	"github.com/urfave/negroni"
)

const (
	chunkSize       = 800
	chunkOverlap    = 100
	maxOutputTokens = 512
	temperature     = 0.2
)

func main() {
	runIngest := flag.Bool("ingest", false, "run one ingestion from the data directory and exit")
	includeCrawl := flag.Bool("crawl", false, "also crawl the official site during -ingest")
	crawlDepth := flag.Int("crawl-depth", 1, "crawl depth used with -crawl")
	flag.Parse()

	cfg := config.Load()

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	location, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		logger.Warn("Unknown timezone, falling back to UTC",
			slog.String("timezone", cfg.AppTimezone))
		location = time.UTC
	}

	if cfg.Debug {
		logger.Info("Loaded configuration",
			slog.String("llm_provider", cfg.LLMProvider),
			slog.String("embedding_model", cfg.EmbeddingModelName),
			slog.String("vector_store", cfg.VectorStore),
			slog.String("data_dir", cfg.DataDir))
	}

	store, err := vectorstore.New(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize vector store: %v", err)
	}
	defer store.Close()

	embedder := embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
		APIURL: cfg.EmbeddingAPIURL,
		APIKey: cfg.EmbeddingAPIKey,
		Model:  cfg.EmbeddingModelName,
	}, logger)

	llm, err := newLLMService(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize generation service: %v", err)
	}

	splitter := chunker.NewRecursiveSplitter(chunkSize, chunkOverlap)
	loader := document.NewLoader(logger)
	crawler := document.NewCrawler(logger)

	ingestPipeline := ingest.New(cfg, loader, crawler, splitter, embedder, store, logger)
	answerPipeline := rag.NewPipeline(embedder, store, llm, location, logger)

	if *runIngest {
		result, err := ingestPipeline.Run(context.Background(), ingest.Options{
			IncludeCrawl: *includeCrawl,
			CrawlDepth:   *crawlDepth,
		})
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		fmt.Println(result.Message)
		return
	}

	notifier := notify.NewSMSNotifier(notify.SMSConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioFromNumber,
		ToNumber:   cfg.TwilioAdminNumber,
	}, logger)

	healthHandler := handlers.NewHealthHandler(llm.ModelName(), embedder.ModelName(), location)
	ingestHandler := handlers.NewIngestHandler(ingestPipeline, notifier, logger)
	chatHandler := handlers.NewChatHandler(answerPipeline, logger)

	r := server.SetupRoutes(healthHandler, ingestHandler, chatHandler)
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, cfg.CertCacheDir)
	} else {
		srv := &http.Server{
			Addr:        ":" + cfg.HTTPPort,
			Handler:     n,
			IdleTimeout: time.Minute,
			ReadTimeout: 10 * time.Second,
			// Ingestion and generation calls can run for minutes.
			WriteTimeout: 5 * time.Minute,
		}
		logger.Info("Serving HTTP",
			slog.String("addr", srv.Addr))
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(r)
	return n
}

func newLLMService(cfg config.Config, logger *slog.Logger) (llm_service.LLMService, error) {
	switch cfg.LLMProvider {
	case "openai":
		return llm_service.NewOpenAIService(llm_service.OpenAIConfig{
			APIURL:      cfg.LLMAPIURL,
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.LLMModelName,
			MaxTokens:   maxOutputTokens,
			Temperature: temperature,
		}, logger), nil
	case "huggingface":
		return llm_service.NewHuggingFaceService(llm_service.HuggingFaceConfig{
			APIToken:    cfg.HFAPIToken,
			Model:       cfg.HFModel,
			MaxTokens:   maxOutputTokens,
			Temperature: temperature,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}

func initLogger(cfg config.Config) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	fileHandler, err := logging.NewDailyFileHandler(cfg.LogDir, "assistant", &slog.HandlerOptions{
		Level: level,
	})
	if err != nil {
		return nil, err
	}

	return slog.New(fileHandler), nil
}
