package llm_service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// OpenAIService calls an OpenAI-compatible chat completions endpoint with a
// fixed low temperature and bounded output length.
type OpenAIService struct {
	apiURL      string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	logger      *slog.Logger
}

type OpenAIConfig struct {
	APIURL      string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

func NewOpenAIService(cfg OpenAIConfig, logger *slog.Logger) *OpenAIService {
	return &OpenAIService{
		apiURL:      cfg.APIURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      logger,
	}
}

func (s *OpenAIService) ModelName() string { return s.model }

func (s *OpenAIService) Generate(ctx context.Context, prompt string) (string, error) {
	maxRetries := 3
	retryDelay := 5 * time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		response, err := s.callAPI(ctx, prompt)
		if err == nil {
			return response, nil
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusTooManyRequests {
				s.logger.Error("Generation API quota exceeded",
					slog.String("error_type", apiErr.ErrorType),
					slog.String("error_message", apiErr.Message),
					slog.String("model", s.model))
				return "", fmt.Errorf("generation quota exceeded: %s (Type: %s)", apiErr.Message, apiErr.ErrorType)
			}
			s.logger.Error("Generation API error",
				slog.Int("attempt", attempt),
				slog.Int("status_code", apiErr.StatusCode),
				slog.String("error_type", apiErr.ErrorType),
				slog.String("error_message", apiErr.Message))
		}

		if attempt == maxRetries {
			s.logger.Error("Error calling generation API after multiple attempts",
				slog.Int("attempts", maxRetries),
				slog.String("error", err.Error()),
				slog.String("model", s.model))
			return "", fmt.Errorf("failed to call generation API after %d attempts: %w", maxRetries, err)
		}

		s.logger.Warn("Attempt failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_delay", retryDelay),
			slog.String("error", err.Error()))
		time.Sleep(retryDelay)
	}

	return "", fmt.Errorf("failed to call generation API after exhausting all retry attempts")
}

func (s *OpenAIService) callAPI(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  s.maxTokens,
		"temperature": s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newAPIError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("unexpected response format from generation API")
	}

	return result.Choices[0].Message.Content, nil
}
