// ABOUTME: Store interface and data types for prep-gateway persistence
// ABOUTME: Defines Conversation, Message structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Role constants for message roles
const (
	RoleSystem    = "system"    // Instruction text sent to the model, never shown to students
	RoleUser      = "user"      // Student-authored message
	RoleAssistant = "assistant" // Model-authored message
)

// Conversation represents a single study session
type Conversation struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Message represents a single message within a conversation.
// Seq is a per-conversation monotonic sequence number; messages within a
// conversation form a total order by Seq. Content is immutable once written,
// except for the in-flight assistant message that the relay fills in while
// streaming.
type Message struct {
	ID             string
	ConversationID string
	Seq            int64
	Role           string
	Content        string
	CreatedAt      time.Time
}

// Store defines the interface for conversation and message persistence
type Store interface {
	// Conversations
	CreateConversation(ctx context.Context, title string) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context, limit int) ([]*Conversation, error)
	// DeleteConversation removes a conversation and all its messages.
	// Deleting an unknown id is not an error.
	DeleteConversation(ctx context.Context, id string) error

	// Messages
	AppendMessage(ctx context.Context, conversationID, role, content string) (*Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
	// UpdateMessageContent rewrites a message's content. Only the relay calls
	// this, and only for the assistant message of the turn in flight.
	UpdateMessageContent(ctx context.Context, messageID, content string) error

	// Close releases any resources held by the store
	Close() error
}
