package llm_service

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// apiErrorBody is the error envelope returned by OpenAI-style APIs.
type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// APIError carries the status code and error details of a failed
// generation-API call so callers can distinguish quota errors from the rest.
type APIError struct {
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generation API error (HTTP %d): %s (Type: %s)", e.StatusCode, e.Message, e.ErrorType)
}

// newAPIError reads the response body and extracts structured error details
// when the body follows the OpenAI error format.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    "Unknown error",
		ErrorType:  "unknown",
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	apiErr.RawBody = string(body)

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		apiErr.ErrorType = parsed.Error.Type
	}
	return apiErr
}
