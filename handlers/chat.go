package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mthotham/assistant/rag"
)

// Answerer is the slice of the answer pipeline the HTTP layer needs.
type Answerer interface {
	Answer(ctx context.Context, question, intentOverride string) (rag.AnswerResult, error)
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string `json:"message"`
	Intent  string `json:"intent"`
}

// ChatHandler answers questions over HTTP, via POST /chat and the GET
// /GetData convenience route.
type ChatHandler struct {
	pipeline Answerer
	logger   *slog.Logger
}

func NewChatHandler(pipeline Answerer, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode chat request",
			slog.String("error", err.Error()))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	h.answer(w, r, req.Message, req.Intent)
}

func (h *ChatHandler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("q")
	if question == "" {
		http.Error(w, "q parameter is required", http.StatusBadRequest)
		return
	}

	h.answer(w, r, question, r.URL.Query().Get("intent"))
}

func (h *ChatHandler) answer(w http.ResponseWriter, r *http.Request, question, intentOverride string) {
	h.logger.Info("Chat request",
		slog.String("question", truncate(question, 80)),
		slog.String("intent_override", intentOverride))

	result, err := h.pipeline.Answer(r.Context(), question, intentOverride)
	if err != nil {
		h.logger.Error("Failed to answer question",
			slog.String("error", err.Error()))
		http.Error(w, "Failed to answer question", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode response",
			slog.String("error", err.Error()))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
