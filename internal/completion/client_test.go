// ABOUTME: Tests for the streaming completion client
// ABOUTME: Uses httptest SSE servers to verify fragment decode and error propagation

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sseHandler writes the given fragments as SSE chunks, optionally followed
// by the [DONE] sentinel.
func sseHandler(t *testing.T, fragments []string, sendDone bool) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frag := range fragments {
			payload, err := json.Marshal(map[string]any{
				"choices": []map[string]any{
					{"delta": map[string]string{"content": frag}},
				},
			})
			require.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
		if sendDone {
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
		}
	}
}

// collect drains a stream until EOF or error.
func collect(stream Stream) (string, error) {
	defer stream.Close()
	var full string
	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return full, nil
		}
		if err != nil {
			return full, err
		}
		full += frag
	}
}

func TestClient_StreamCompletion(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{"Simple ", "Harmonic ", "Motion."}, true))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key"})
	stream, err := client.StreamCompletion(context.Background(), []Message{
		{Role: "user", Content: "What is SHM?"},
	})
	require.NoError(t, err)

	full, err := collect(stream)
	require.NoError(t, err)
	assert.Equal(t, "Simple Harmonic Motion.", full)
}

func TestClient_StreamCompletion_SendsAuthAndHistory(t *testing.T) {
	var gotAuth string
	var gotMessages []Message

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotMessages = req.Messages
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	history := []Message{
		{Role: "system", Content: "be helpful"},
		{Role: "user", Content: "hi"},
	}
	stream, err := client.StreamCompletion(context.Background(), history)
	require.NoError(t, err)
	defer stream.Close()

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, history, gotMessages)
}

func TestClient_StreamCompletion_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"type":    "rate_limit_exceeded",
				"message": "quota exhausted",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	_, err := client.StreamCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "rate_limit_exceeded", apiErr.Type)
	assert.Equal(t, "quota exhausted", apiErr.Message)
}

func TestClient_StreamCompletion_TruncatedStream(t *testing.T) {
	// Fragments but no [DONE] sentinel: must surface as an error, not EOF
	srv := httptest.NewServer(sseHandler(t, []string{"partial"}, false))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	stream, err := client.StreamCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	full, err := collect(stream)
	assert.Equal(t, "partial", full)
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestClient_StreamCompletion_SkipsEmptyDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{}}]}\n\n")
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hello\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	stream, err := client.StreamCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	full, err := collect(stream)
	require.NoError(t, err)
	assert.Equal(t, "hello", full)
}

func TestStream_RecvAfterEOF(t *testing.T) {
	srv := httptest.NewServer(sseHandler(t, []string{"x"}, true))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})
	stream, err := client.StreamCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	defer stream.Close()

	frag, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "x", frag)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)

	// Stays terminal
	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
