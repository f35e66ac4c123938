// ABOUTME: Pull-based fragment stream over the provider's SSE wire format
// ABOUTME: Decodes data: lines with a [DONE] sentinel into plain text fragments

package completion

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Stream is a finite, non-restartable sequence of text fragments.
// Recv returns io.EOF at the natural end of the stream and a non-EOF error
// for transport or provider failures. Close releases the underlying
// connection and is safe to call at any point.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// sseStream decodes the provider's SSE body into text fragments.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newSSEStream(body io.ReadCloser) *sseStream {
	scanner := bufio.NewScanner(body)
	// Fragments are small, but a single SSE line can carry a large chunk
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: body, scanner: scanner}
}

// chunk models the slice of a streamed chat-completion response we care about.
type chunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			s.done = true
			return "", io.EOF
		}

		var c chunk
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return "", fmt.Errorf("decoding stream chunk: %w", err)
		}
		if len(c.Choices) == 0 || c.Choices[0].Delta.Content == "" {
			continue
		}
		return c.Choices[0].Delta.Content, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stream: %w", err)
	}
	// Body ended without the [DONE] sentinel: the provider disconnected
	// mid-generation. Distinguish from a natural end so the caller never
	// mistakes truncation for completion.
	return "", fmt.Errorf("stream ended before completion: %w", io.ErrUnexpectedEOF)
}

func (s *sseStream) Close() error {
	return s.body.Close()
}
