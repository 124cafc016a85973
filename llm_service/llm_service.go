package llm_service

import "context"

// LLMService generates text from a rendered prompt. A failed call is
// returned to the caller as-is; there is no fallback answer.
type LLMService interface {
	Generate(ctx context.Context, prompt string) (string, error)
	ModelName() string
}
