package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const hfInferenceBaseURL = "https://api-inference.huggingface.co/models/"

// HuggingFaceService calls the Hugging Face Inference API for hosted
// text-generation models.
type HuggingFaceService struct {
	apiToken    string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
}

type HuggingFaceConfig struct {
	APIToken    string
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewHuggingFaceService(cfg HuggingFaceConfig, logger *slog.Logger) *HuggingFaceService {
	return &HuggingFaceService{
		apiToken:    cfg.APIToken,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      logger,
	}
}

func (s *HuggingFaceService) ModelName() string { return s.model }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	Temperature    float64 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	ReturnFullText bool    `json:"return_full_text"`
}

func (s *HuggingFaceService) Generate(ctx context.Context, prompt string) (string, error) {
	if s.apiToken == "" {
		return "", fmt.Errorf("HF_API_TOKEN not set")
	}

	requestBody, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			Temperature:    s.temperature,
			MaxNewTokens:   s.maxTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	endpoint := hfInferenceBaseURL + s.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := newAPIError(resp)
		s.logger.Error("Hugging Face Inference API error",
			slog.Int("status_code", apiErr.StatusCode),
			slog.String("model", s.model),
			slog.String("raw_body", apiErr.RawBody))
		return "", apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(result) == 0 {
		return "", fmt.Errorf("empty response from Hugging Face Inference API")
	}

	return result[0].GeneratedText, nil
}
