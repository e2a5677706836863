package handlers

import (
	"errors"
	"net/http"

	"github.com/medfront/medfront/internal/docparse"
	apperrors "github.com/medfront/medfront/internal/errors"
	"github.com/medfront/medfront/internal/llm"
	"github.com/medfront/medfront/internal/metrics"
)

// ChatHandler proxies assistant conversations to the configured LLM.
// Structured message content, including base64 file attachments, is
// flattened to plain text before the upstream call.
type ChatHandler struct {
	Docs *docparse.Service
	LLM  *llm.Client
}

func NewChatHandler(docs *docparse.Service, client *llm.Client) *ChatHandler {
	return &ChatHandler{Docs: docs, LLM: client}
}

type chatRequest struct {
	Messages    []docparse.Message `json:"messages"`
	Temperature *float64           `json:"temperature"`
	MaxTokens   *int               `json:"max_tokens"`
}

// ChatResponse returns the assistant reply plus usage accounting.
type ChatResponse struct {
	Reply string        `json:"reply"`
	Model string        `json:"model"`
	Usage llm.ChatUsage `json:"usage"`
}

// Complete flattens the conversation and forwards it upstream.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if envelope := decodeJSON(r, &req); envelope != nil {
		respondWithError(w, r, envelope)
		return
	}
	if len(req.Messages) == 0 {
		respondWithError(w, r, apperrors.NewValidationError("at least one message is required"))
		return
	}

	flattened := h.Docs.ProcessMessages(req.Messages)
	messages := make([]llm.ChatMessage, 0, len(flattened))
	for _, msg := range flattened {
		content, _ := msg.Content.(string)
		messages = append(messages, llm.ChatMessage{
			Role:    msg.Role,
			Content: content,
			Name:    msg.Name,
		})
	}

	resp, err := h.LLM.ChatCompletion(r.Context(), messages, llm.ChatOptions{
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	metrics.RecordOperation("chat_completion", err == nil)
	if err != nil {
		var provider *llm.ProviderError
		if errors.As(err, &provider) {
			respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err, "assistant provider rejected the request"))
			return
		}
		respondWithError(w, r, apperrors.WrapExternalService(r.Context(), err, "assistant request failed"))
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{
		Reply: resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: resp.Usage,
	})
}
