// ABOUTME: Tests for the SQLite store implementation
// ABOUTME: Verifies conversation CRUD, message ordering, and content updates

package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestStore_CreateConversation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "JEE 2026 Preparation")
	require.NoError(t, err)
	require.NotEmpty(t, conv.ID)
	assert.Equal(t, "JEE 2026 Preparation", conv.Title)
	assert.False(t, conv.CreatedAt.IsZero())

	// Verify we can retrieve it
	retrieved, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, retrieved.ID)
	assert.Equal(t, conv.Title, retrieved.Title)
}

func TestStore_GetConversation_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetConversation(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListConversations_MostRecentFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		conv, err := store.CreateConversation(ctx, fmt.Sprintf("session %d", i))
		require.NoError(t, err)
		ids = append(ids, conv.ID)
		// Ensure distinct creation timestamps
		time.Sleep(2 * time.Millisecond)
	}

	convs, err := store.ListConversations(ctx, 0)
	require.NoError(t, err)
	require.Len(t, convs, 3)

	assert.Equal(t, ids[2], convs[0].ID)
	assert.Equal(t, ids[1], convs[1].ID)
	assert.Equal(t, ids[0], convs[2].ID)
}

func TestStore_DeleteConversation_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "to delete")
	require.NoError(t, err)

	_, err = store.AppendMessage(ctx, conv.ID, RoleUser, "hello")
	require.NoError(t, err)

	err = store.DeleteConversation(ctx, conv.ID)
	require.NoError(t, err)

	// Second delete must not error
	err = store.DeleteConversation(ctx, conv.ID)
	require.NoError(t, err)

	_, err = store.GetConversation(ctx, conv.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	msgs, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestStore_AppendMessage_SequenceOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "ordering")
	require.NoError(t, err)

	first, err := store.AppendMessage(ctx, conv.ID, RoleSystem, "system prompt")
	require.NoError(t, err)
	second, err := store.AppendMessage(ctx, conv.ID, RoleAssistant, "greeting")
	require.NoError(t, err)
	third, err := store.AppendMessage(ctx, conv.ID, RoleUser, "question")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.Equal(t, int64(3), third.Seq)

	msgs, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	// Creation order, system messages included
	assert.Equal(t, RoleSystem, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, RoleUser, msgs[2].Role)
	assert.Equal(t, "question", msgs[2].Content)
}

func TestStore_AppendMessage_UnknownConversation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.AppendMessage(ctx, "nonexistent", RoleUser, "hello")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateMessageContent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.CreateConversation(ctx, "streaming")
	require.NoError(t, err)

	placeholder, err := store.AppendMessage(ctx, conv.ID, RoleAssistant, "")
	require.NoError(t, err)

	// Progressive rewrites, as the relay does while a turn streams
	require.NoError(t, store.UpdateMessageContent(ctx, placeholder.ID, "Simple "))
	require.NoError(t, store.UpdateMessageContent(ctx, placeholder.ID, "Simple Harmonic "))
	require.NoError(t, store.UpdateMessageContent(ctx, placeholder.ID, "Simple Harmonic Motion."))

	msgs, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Simple Harmonic Motion.", msgs[0].Content)
}

func TestStore_UpdateMessageContent_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.UpdateMessageContent(ctx, "nonexistent", "content")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_MessagesIsolatedPerConversation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a, err := store.CreateConversation(ctx, "a")
	require.NoError(t, err)
	b, err := store.CreateConversation(ctx, "b")
	require.NoError(t, err)

	_, err = store.AppendMessage(ctx, a.ID, RoleUser, "in a")
	require.NoError(t, err)
	mb, err := store.AppendMessage(ctx, b.ID, RoleUser, "in b")
	require.NoError(t, err)

	// Sequences are per-conversation
	assert.Equal(t, int64(1), mb.Seq)

	msgs, err := store.ListMessages(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "in a", msgs[0].Content)
}
