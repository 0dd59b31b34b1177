package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/httpx"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/services"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/sse"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/vanna"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/validation"
)

// ChatClient is the text-to-SQL service as seen by the chat routes.
type ChatClient interface {
	Configured() bool
	Chat(ctx context.Context, prompt string) (*vanna.ChatResponse, error)
	Stream(ctx context.Context, prompt string) (io.ReadCloser, error)
}

// ChatHandler proxies prompts to the text-to-SQL service.
type ChatHandler struct {
	client ChatClient
	logs   *services.QueryLogService
	relay  *sse.Relay
}

func NewChatHandler(client ChatClient, logs *services.QueryLogService, relay *sse.Relay) *ChatHandler {
	return &ChatHandler{client: client, logs: logs, relay: relay}
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

// POST /chat-with-data
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", map[string]string{"_": err.Error()})
		return
	}
	v := validation.Violations{}
	validation.Required("prompt", req.Prompt, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "Missing prompt", nil)
		return
	}
	if !h.client.Configured() {
		httpx.JSONError(w, http.StatusInternalServerError, vanna.ErrNotConfigured.Error(), nil)
		return
	}

	resp, err := h.client.Chat(r.Context(), req.Prompt)
	if err != nil {
		h.record(r.Context(), req.Prompt, nil)
		var upErr *vanna.UpstreamError
		if errors.As(err, &upErr) {
			httpx.JSONError(w, http.StatusBadGateway, "Vanna error", upErr.Body)
			return
		}
		serverError(w, r, "Chat failed", err)
		return
	}

	h.record(r.Context(), req.Prompt, resp.SQL)
	httpx.RawJSON(w, http.StatusOK, resp.Raw)
}

// record appends to the query log. Failures are logged and dropped; they
// never reach the caller.
func (h *ChatHandler) record(ctx context.Context, prompt string, sql *string) {
	if err := h.logs.Record(context.WithoutCancel(ctx), prompt, sql); err != nil {
		slog.Warn("query log write failed", "error", err)
	}
}

// GET /chat-with-data/stream?prompt=
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	prompt := r.URL.Query().Get("prompt")
	if prompt == "" {
		http.Error(w, "Missing prompt", http.StatusBadRequest)
		return
	}
	if !h.client.Configured() {
		sse.PrepareHeaders(w)
		w.WriteHeader(http.StatusInternalServerError)
		_ = sse.WriteError(w, vanna.ErrNotConfigured.Error())
		return
	}

	sse.Open(w)
	open := func(ctx context.Context) (io.ReadCloser, error) {
		return h.client.Stream(ctx, prompt)
	}
	err := h.relay.Pipe(r.Context(), w, open)
	var connErr *sse.ConnectError
	switch {
	case errors.As(err, &connErr):
		msg := fmt.Sprintf("Vanna error: %v", connErr.Err)
		var upErr *vanna.UpstreamError
		if errors.As(err, &upErr) {
			msg = fmt.Sprintf("Vanna error: %d", upErr.Status)
		}
		_ = sse.WriteError(w, msg)
	case err != nil && !errors.Is(err, context.Canceled):
		slog.Debug("chat stream ended", "error", err)
	}
}
