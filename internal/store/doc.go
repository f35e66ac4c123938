// Package store provides persistent storage for prep-gateway using SQLite.
//
// # Data Models
//
//   - Conversation: A study session with a title and creation time
//   - Message: A single system/user/assistant message, totally ordered within
//     its conversation by a monotonic sequence number
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The schema is created automatically on first open.
//
// # Error Handling
//
//   - ErrNotFound: Requested entity does not exist
//
// DeleteConversation is idempotent; deleting an unknown id succeeds.
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewMockStore() for unit tests without SQLite, or NewSQLiteStore with a
// t.TempDir() path for integration tests against the real driver.
package store
