// ABOUTME: Conversation relay between the HTTP boundary, the store, and the completion provider
// ABOUTME: Persists state consistently across streaming, disconnects, errors, and cancellation

package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prepaccel/prep-gateway/internal/completion"
	"github.com/prepaccel/prep-gateway/internal/prompt"
	"github.com/prepaccel/prep-gateway/internal/store"
)

// Store defines what the relay needs from storage
type Store interface {
	CreateConversation(ctx context.Context, title string) (*store.Conversation, error)
	GetConversation(ctx context.Context, id string) (*store.Conversation, error)
	AppendMessage(ctx context.Context, conversationID, role, content string) (*store.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*store.Message, error)
	UpdateMessageContent(ctx context.Context, messageID, content string) error
}

// CompletionStreamer defines what the relay needs from the completion client
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, history []completion.Message) (completion.Stream, error)
}

// EventType identifies the kind of turn event delivered to the caller.
type EventType string

const (
	EventFragment  EventType = "fragment"  // One incremental piece of assistant text
	EventDone      EventType = "done"      // Natural end of the turn
	EventError     EventType = "error"     // Upstream failure; partial content is preserved
	EventCancelled EventType = "cancelled" // Explicit stop; placeholder sealed with accumulated text
)

// Event is one item of a turn's live stream.
type Event struct {
	Type EventType
	Text string // fragment text, set for EventFragment
	Err  error  // set for EventError
}

// Turn is the live handle for one user-submission-to-sealed-answer unit of
// work. Events is closed when the turn reaches a terminal state.
type Turn struct {
	ConversationID     string
	UserMessageID      string
	AssistantMessageID string
	Events             <-chan Event
}

// StartSessionRequest parameterizes a new study session. Exam, target, and
// mode are not persisted as rows; they only shape the seeded prompt text.
type StartSessionRequest struct {
	Exam      string
	Target    string
	Mode      string
	Title     string // optional explicit title; derived from exam+target when empty
	SeedQuery string // optional first user message, processed before returning
}

// Service orchestrates conversations: it turns user input into a completion
// request and keeps persisted state consistent while the response streams.
type Service struct {
	store       Store
	completions CompletionStreamer
	logger      *slog.Logger
	turns       *turnTracker
}

// New creates a new relay Service
func New(st Store, completions CompletionStreamer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:       st,
		completions: completions,
		logger:      logger.With("component", "relay"),
		turns:       newTurnTracker(),
	}
}

// StartSession creates a conversation seeded with the system prompt and
// assistant greeting. The two seed appends are synchronous and never
// streamed. If a seed query is present, a full turn runs to completion
// before the conversation is returned; its answer is read back from the
// store by the caller.
func (s *Service) StartSession(ctx context.Context, req *StartSessionRequest) (*store.Conversation, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = prompt.Title(req.Exam, req.Target)
	}

	conv, err := s.store.CreateConversation(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("creating conversation: %w", err)
	}

	p := prompt.Build(req.Exam, req.Target, req.Mode)
	if _, err := s.store.AppendMessage(ctx, conv.ID, store.RoleSystem, p.System); err != nil {
		return nil, fmt.Errorf("seeding system message: %w", err)
	}
	if _, err := s.store.AppendMessage(ctx, conv.ID, store.RoleAssistant, p.Greeting); err != nil {
		return nil, fmt.Errorf("seeding greeting: %w", err)
	}

	s.logger.Info("session started",
		"conversation_id", conv.ID,
		"exam", req.Exam,
		"mode", req.Mode)

	if seed := strings.TrimSpace(req.SeedQuery); seed != "" {
		turn, err := s.SubmitMessage(ctx, conv.ID, seed)
		if err != nil {
			return nil, fmt.Errorf("running seed turn: %w", err)
		}
		// Drain to completion; the exchange lands in the store. An upstream
		// failure mid-turn is terminal to the turn, not to the session.
		for ev := range turn.Events {
			if ev.Type == EventError {
				s.logger.Warn("seed turn failed upstream",
					"conversation_id", conv.ID,
					"error", ev.Err)
			}
		}
	}

	return conv, nil
}

// SubmitMessage runs one turn: it records the user message, opens a
// completion stream over the full history, and returns a live event channel.
// The turn keeps streaming into the store even if the caller stops reading;
// an explicit Cancel is the only way to abort it early.
//
// Returns store.ErrNotFound for an unknown conversation and
// ErrTurnInProgress when a turn is already running.
func (s *Service) SubmitMessage(ctx context.Context, conversationID, content string) (*Turn, error) {
	if _, err := s.store.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	// The upstream stream must outlive the caller: client disconnect never
	// cancels consumption, only the explicit stop signal does.
	streamCtx, cancelStream := context.WithCancel(context.WithoutCancel(ctx))

	if err := s.turns.begin(conversationID, cancelStream); err != nil {
		cancelStream()
		return nil, err
	}

	turn, err := s.openTurn(ctx, streamCtx, conversationID, content)
	if err != nil {
		s.turns.finish(conversationID)
		cancelStream()
		return nil, err
	}
	return turn, nil
}

// openTurn performs the persisted setup of a turn and starts the streaming
// loop. The in-flight flag is already held; on error the caller releases it.
func (s *Service) openTurn(ctx, streamCtx context.Context, conversationID, content string) (*Turn, error) {
	// Record the user message first: we keep it even if the provider fails
	userMsg, err := s.store.AppendMessage(ctx, conversationID, store.RoleUser, content)
	if err != nil {
		return nil, fmt.Errorf("recording user message: %w", err)
	}

	history, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	placeholder, err := s.store.AppendMessage(ctx, conversationID, store.RoleAssistant, "")
	if err != nil {
		return nil, fmt.Errorf("creating placeholder: %w", err)
	}

	stream, err := s.completions.StreamCompletion(streamCtx, toCompletionMessages(history))
	if err != nil {
		// The empty placeholder stays: partial answers, even zero-length
		// ones, are never rolled back
		return nil, fmt.Errorf("opening completion stream: %w", err)
	}

	s.logger.Debug("turn started",
		"conversation_id", conversationID,
		"user_message_id", userMsg.ID,
		"history_len", len(history))

	events := make(chan Event, 16)
	go s.runTurn(ctx, stream, conversationID, placeholder.ID, events)

	return &Turn{
		ConversationID:     conversationID,
		UserMessageID:      userMsg.ID,
		AssistantMessageID: placeholder.ID,
		Events:             events,
	}, nil
}

// Cancel aborts the conversation's in-flight turn. The placeholder is sealed
// with whatever was accumulated and the conversation returns to idle.
// Returns ErrNoActiveTurn if nothing is in flight.
func (s *Service) Cancel(conversationID string) error {
	return s.turns.cancel(conversationID)
}

// runTurn drains the completion stream to a terminal state, accumulating
// fragments, progressively rewriting the placeholder, and forwarding events
// to the caller while it listens. callerCtx only gates forwarding; the
// stream itself runs on its own detached context.
func (s *Service) runTurn(callerCtx context.Context, stream completion.Stream, conversationID, placeholderID string, out chan<- Event) {
	defer close(out)
	defer s.turns.finish(conversationID)
	defer stream.Close()

	var acc strings.Builder
	listening := true

	emit := func(ev Event) {
		if !listening {
			return
		}
		select {
		case out <- ev:
		case <-callerCtx.Done():
			// Caller went away; keep draining so the store still ends up
			// with the complete answer
			listening = false
			s.logger.Debug("caller disconnected, draining to completion",
				"conversation_id", conversationID)
		case <-time.After(5 * time.Second):
			listening = false
			s.logger.Warn("event channel stalled, dropping further events",
				"conversation_id", conversationID)
		}
	}

	for {
		frag, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			// Natural completion: the placeholder already equals the
			// accumulated text
			s.logger.Debug("turn completed",
				"conversation_id", conversationID,
				"content_len", acc.Len())
			emit(Event{Type: EventDone})
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				s.logger.Info("turn cancelled",
					"conversation_id", conversationID,
					"content_len", acc.Len())
				emit(Event{Type: EventCancelled})
				return
			}
			// Terminal to the turn, not to the conversation. Partial
			// content stays persisted.
			s.logger.Error("completion stream failed",
				"conversation_id", conversationID,
				"content_len", acc.Len(),
				"error", err)
			emit(Event{Type: EventError, Err: err})
			return
		}

		acc.WriteString(frag)
		s.updatePlaceholder(placeholderID, acc.String())
		emit(Event{Type: EventFragment, Text: frag})
	}
}

// updatePlaceholder rewrites the in-flight assistant message with a separate
// timeout context, so persistence continues even when the request context is
// long gone.
func (s *Service) updatePlaceholder(messageID, content string) {
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.UpdateMessageContent(saveCtx, messageID, content); err != nil {
		s.logger.Error("failed to update streaming message",
			"error", err,
			"message_id", messageID)
	}
}

// toCompletionMessages converts stored history, system rows included, into
// the provider's role/content shape.
func toCompletionMessages(history []*store.Message) []completion.Message {
	msgs := make([]completion.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, completion.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}
