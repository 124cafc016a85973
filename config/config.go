package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the assistant needs at startup. It is built once
// in main and handed to component constructors; nothing reads the
// environment after Load returns.
type Config struct {
	Environment  string
	HTTPPort     string
	HTTPSPort    string
	Domains      []string
	CertCacheDir string

	// Generation model
	LLMProvider  string // "openai" or "huggingface"
	LLMModelName string
	LLMAPIURL    string
	OpenAIAPIKey string
	HFAPIToken   string
	HFModel      string

	// Embeddings
	EmbeddingModelName string
	EmbeddingAPIURL    string
	EmbeddingAPIKey    string

	// Corpus and index locations
	DataDir          string
	VectorStore      string // "local" or "pgvector"
	VectorStoreDir   string
	DatabaseURL      string
	CollectionName   string
	LegacyLocalFiles []string

	// Crawl
	CrawlSeedURLs []string

	// Notifications
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	TwilioAdminNumber string

	AppTimezone string
	LogDir      string
	Debug       bool
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

// DefaultCrawlSeedURLs are the official resort pages crawled when an ingest
// request asks for a site crawl and no override is configured.
var DefaultCrawlSeedURLs = []string{
	"https://www.mthotham.com.au/",
	"https://www.mthotham.com.au/discover/accommodation",
	"https://www.mthotham.com.au/plan-and-book/lift-passes",
	"https://www.mthotham.com.au/discover/getting-here",
	"https://www.mthotham.com.au/discover/eat-drink",
	"https://www.mthotham.com.au/on-the-mountain/safety",
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),
		Domains:      []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir: getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),

		LLMProvider:  getEnv("LLM_PROVIDER", "openai"),
		LLMModelName: getEnv("LLM_MODEL_NAME", "gpt-4o-mini"),
		LLMAPIURL:    getEnv("LLM_API_URL", "https://api.openai.com/v1/chat/completions"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		HFAPIToken:   getEnv("HF_API_TOKEN", ""),
		HFModel:      getEnv("HF_MODEL", "TinyLlama/TinyLlama-1.1B-Chat-v1.0"),

		EmbeddingModelName: getEnv("EMBED_MODEL_NAME", "text-embedding-3-small"),
		EmbeddingAPIURL:    getEnv("EMBED_API_URL", "https://api.openai.com/v1/embeddings"),
		EmbeddingAPIKey:    getEnv("EMBED_API_KEY", getEnv("OPENAI_API_KEY", "")),

		DataDir:          getEnv("DATA_DIR", "data_files"),
		VectorStore:      getEnv("VECTOR_STORE", "local"),
		VectorStoreDir:   getEnv("VECTORSTORE_DIR", "data/vectorstore"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CollectionName:   getEnv("COLLECTION_NAME", "mthotham"),
		LegacyLocalFiles: getEnvAsList("LEGACY_LOCAL_FILES", nil),

		CrawlSeedURLs: getEnvAsList("CRAWL_SEED_URLS", DefaultCrawlSeedURLs),

		TwilioAccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:  getEnv("TWILIO_FROM_NUMBER", ""),
		TwilioAdminNumber: getEnv("TWILIO_ADMIN_NUMBER", ""),

		AppTimezone: getEnv("APP_TIMEZONE", "UTC"),
		LogDir:      getEnv("LOG_DIR", "logs/assistant"),
		Debug:       getEnvAsBool("DEBUG", false),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	return strings.EqualFold(strValue, "true") || strValue == "1"
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
