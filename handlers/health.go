package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

const serviceName = "mthotham-assistant"

// HealthHandler reports service identity, the configured models and the
// current time in the application timezone.
type HealthHandler struct {
	model          string
	embeddingModel string
	location       *time.Location
}

func NewHealthHandler(model, embeddingModel string, location *time.Location) *HealthHandler {
	if location == nil {
		location = time.UTC
	}
	return &HealthHandler{
		model:          model,
		embeddingModel: embeddingModel,
		location:       location,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"ok":              true,
		"service":         serviceName,
		"model":           h.model,
		"embedding_model": h.embeddingModel,
		"time":            time.Now().In(h.location).Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
