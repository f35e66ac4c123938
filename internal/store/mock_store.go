// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation // keyed by conversation ID
	messages      map[string][]*Message    // keyed by conversation ID, in seq order
	messageIndex  map[string]*Message      // keyed by message ID

	// FailAppend, when set, is returned from AppendMessage to simulate
	// storage unavailability.
	FailAppend error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		conversations: make(map[string]*Conversation),
		messages:      make(map[string][]*Message),
		messageIndex:  make(map[string]*Message),
	}
}

// CreateConversation stores a new conversation.
func (m *MockStore) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := &Conversation{
		ID:        uuid.New().String(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	m.conversations[conv.ID] = conv

	c := *conv
	return &c, nil
}

// GetConversation retrieves a conversation by ID.
func (m *MockStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}

	c := *conv
	return &c, nil
}

// ListConversations returns conversations most-recent-first.
func (m *MockStore) ListConversations(ctx context.Context, limit int) ([]*Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	convs := make([]*Conversation, 0, len(m.conversations))
	for _, conv := range m.conversations {
		c := *conv
		convs = append(convs, &c)
	}
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})

	if len(convs) > limit {
		convs = convs[:limit]
	}
	return convs, nil
}

// DeleteConversation removes a conversation and its messages. Idempotent.
func (m *MockStore) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range m.messages[id] {
		delete(m.messageIndex, msg.ID)
	}
	delete(m.messages, id)
	delete(m.conversations, id)
	return nil
}

// AppendMessage appends a message with the next sequence number.
func (m *MockStore) AppendMessage(ctx context.Context, conversationID, role, content string) (*Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAppend != nil {
		return nil, m.FailAppend
	}

	if _, ok := m.conversations[conversationID]; !ok {
		return nil, ErrNotFound
	}

	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Seq:            int64(len(m.messages[conversationID]) + 1),
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	m.messageIndex[msg.ID] = msg

	out := *msg
	return &out, nil
}

// ListMessages returns all messages for a conversation in seq order.
func (m *MockStore) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := make([]*Message, 0, len(m.messages[conversationID]))
	for _, msg := range m.messages[conversationID] {
		out := *msg
		msgs = append(msgs, &out)
	}
	return msgs, nil
}

// UpdateMessageContent rewrites a message's content.
func (m *MockStore) UpdateMessageContent(ctx context.Context, messageID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messageIndex[messageID]
	if !ok {
		return ErrNotFound
	}
	msg.Content = content
	return nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
