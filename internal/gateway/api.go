// ABOUTME: HTTP API handlers for conversation CRUD and the SSE turn stream
// ABOUTME: Maps relay errors to status codes and streams turn events as data: lines

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prepaccel/prep-gateway/internal/completion"
	"github.com/prepaccel/prep-gateway/internal/relay"
	"github.com/prepaccel/prep-gateway/internal/store"
)

// StartSessionRequest is the JSON request body for POST /api/conversations.
// Zone is an alias for Mode; older clients send one or the other.
type StartSessionRequest struct {
	Exam         string `json:"exam"`
	Target       string `json:"target"`
	Mode         string `json:"mode,omitempty"`
	Zone         string `json:"zone,omitempty"`
	Title        string `json:"title,omitempty"`
	InitialQuery string `json:"initialQuery,omitempty"`
}

// SubmitMessageRequest is the JSON request body for POST /api/conversations/{id}/messages.
type SubmitMessageRequest struct {
	Content string `json:"content"`
}

// ConversationResponse is the JSON shape for a conversation.
type ConversationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// MessageResponse is the JSON shape for a message.
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ConversationDetailResponse is the JSON response for GET /api/conversations/{id}.
type ConversationDetailResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}

func toConversationResponse(conv *store.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt.Format(time.RFC3339),
	}
}

func (g *Gateway) handleListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := g.store.ListConversations(r.Context(), 0)
	if err != nil {
		g.logger.Error("failed to list conversations", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		resp = append(resp, toConversationResponse(conv))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conv, err := g.store.GetConversation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		g.logger.Error("failed to get conversation", "error", err, "conversation_id", id)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	msgs, err := g.store.ListMessages(r.Context(), id)
	if err != nil {
		g.logger.Error("failed to list messages", "error", err, "conversation_id", id)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ConversationDetailResponse{
		ConversationResponse: toConversationResponse(conv),
		Messages:             make([]MessageResponse, 0, len(msgs)),
	}
	for _, msg := range msgs {
		// System rows shape the model, not the student
		if msg.Role == store.RoleSystem {
			continue
		}
		resp.Messages = append(resp.Messages, MessageResponse{
			ID:        msg.ID,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleStartSession(w http.ResponseWriter, r *http.Request) {
	req, err := parseStartSessionRequest(r.Body)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = req.Zone
	}

	conv, err := g.relay.StartSession(r.Context(), &relay.StartSessionRequest{
		Exam:      req.Exam,
		Target:    req.Target,
		Mode:      mode,
		Title:     req.Title,
		SeedQuery: req.InitialQuery,
	})
	if err != nil {
		g.logger.Error("failed to start session", "error", err)
		g.sendJSONError(w, upstreamStatus(err), "failed to start session")
		return
	}

	writeJSON(w, http.StatusCreated, toConversationResponse(conv))
}

func (g *Gateway) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := g.store.DeleteConversation(r.Context(), id); err != nil {
		g.logger.Error("failed to delete conversation", "error", err, "conversation_id", id)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Content == "" {
		g.sendJSONError(w, http.StatusBadRequest, "content is required")
		return
	}

	// Check streaming support before doing any work (fail fast)
	flusher, ok := w.(http.Flusher)
	if !ok {
		g.logger.Error("streaming not supported")
		g.sendJSONError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	turn, err := g.relay.SubmitMessage(r.Context(), id, req.Content)
	if err != nil {
		// Headers are not sent yet, so these can still be JSON errors
		switch {
		case errors.Is(err, store.ErrNotFound):
			g.sendJSONError(w, http.StatusNotFound, "conversation not found")
		case errors.Is(err, relay.ErrTurnInProgress):
			g.sendJSONError(w, http.StatusConflict, "a turn is already in progress")
		default:
			g.logger.Error("failed to submit message", "error", err, "conversation_id", id)
			g.sendJSONError(w, upstreamStatus(err), "failed to submit message")
		}
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	g.streamTurn(w, flusher, turn)
}

// streamTurn forwards turn events as data-only SSE events. Once here we are
// mid-stream: failures become a terminal error event, never a status code.
func (g *Gateway) streamTurn(w http.ResponseWriter, flusher http.Flusher, turn *relay.Turn) {
	for ev := range turn.Events {
		switch ev.Type {
		case relay.EventFragment:
			g.writeSSEData(w, map[string]string{"content": ev.Text})
		case relay.EventDone, relay.EventCancelled:
			// An explicit stop seals the turn; the client sees it complete
			// with whatever was streamed so far
			g.writeSSEData(w, map[string]bool{"done": true})
			flusher.Flush()
			return
		case relay.EventError:
			g.writeSSEData(w, map[string]string{"error": ev.Err.Error()})
			flusher.Flush()
			return
		}
		flusher.Flush()
	}
}

func (g *Gateway) handleStopTurn(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := g.relay.Cancel(id)
	if errors.Is(err, relay.ErrNoActiveTurn) {
		g.sendJSONError(w, http.StatusConflict, "no turn in progress")
		return
	}
	if err != nil {
		g.logger.Error("failed to stop turn", "error", err, "conversation_id", id)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// upstreamStatus picks a status code for a relay setup failure: provider
// errors map to 502, anything else is a storage-level 500.
func upstreamStatus(err error) int {
	var apiErr *completion.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeSSEData writes a single data-only SSE event.
func (g *Gateway) writeSSEData(w http.ResponseWriter, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		g.logger.Error("failed to marshal SSE data", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseStartSessionRequest parses and validates a StartSessionRequest.
func parseStartSessionRequest(r io.Reader) (*StartSessionRequest, error) {
	var req StartSessionRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return &req, nil
}
