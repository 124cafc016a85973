package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mthotham/assistant/rag"
)

type stubAnswerer struct {
	result      rag.AnswerResult
	err         error
	gotQuestion string
	gotIntent   string
}

func (s *stubAnswerer) Answer(ctx context.Context, question, intentOverride string) (rag.AnswerResult, error) {
	s.gotQuestion = question
	s.gotIntent = intentOverride
	return s.result, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleChat(t *testing.T) {
	stub := &stubAnswerer{
		result: rag.AnswerResult{
			OK:       true,
			Question: "Where can I stay?",
			Intent:   "accommodation",
			Answer:   "The resort has several lodges.",
			Model:    "fake-model",
		},
	}
	h := NewChatHandler(stub, testLogger())

	body := `{"message": "Where can I stay?", "intent": "accommodation"}`
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if stub.gotQuestion != "Where can I stay?" || stub.gotIntent != "accommodation" {
		t.Errorf("pipeline called with (%q, %q)", stub.gotQuestion, stub.gotIntent)
	}

	var got rag.AnswerResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !got.OK || got.Answer != "The resort has several lodges." {
		t.Errorf("unexpected response: %+v", got)
	}
}

func TestHandleChatRejectsBadInput(t *testing.T) {
	h := NewChatHandler(&stubAnswerer{}, testLogger())

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message": `},
		{"missing message", `{"intent": "weather"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.HandleChat(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleChatPipelineFailure(t *testing.T) {
	stub := &stubAnswerer{err: errors.New("model unreachable")}
	h := NewChatHandler(stub, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "hi"}`))
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestHandleGetData(t *testing.T) {
	stub := &stubAnswerer{result: rag.AnswerResult{OK: true, Answer: "yes"}}
	h := NewChatHandler(stub, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/GetData?q=Is+the+bus+running%3F", nil)
	rec := httptest.NewRecorder()
	h.HandleGetData(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.gotQuestion != "Is the bus running?" {
		t.Errorf("question = %q", stub.gotQuestion)
	}
}

func TestHandleGetDataRequiresQuery(t *testing.T) {
	h := NewChatHandler(&stubAnswerer{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/GetData", nil)
	rec := httptest.NewRecorder()
	h.HandleGetData(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
