// Package relay is the conversation state machine between the HTTP boundary,
// the store, and the completion provider.
//
// # Turn lifecycle
//
// A conversation is either idle or has exactly one turn in flight. A turn
// runs from user submission to a sealed assistant answer:
//
//  1. Atomically mark the conversation in flight (Conflict when already set)
//  2. Record the user message
//  3. Read the full history, system rows included
//  4. Create an empty assistant placeholder
//  5. Stream fragments: accumulate, progressively rewrite the placeholder,
//     forward to the caller
//  6. Seal on natural end, upstream error, or explicit cancellation, then
//     clear the in-flight flag
//
// # Consistency rules
//
// The placeholder's visible content is monotonically non-decreasing until
// sealed. Partial answers are preserved on upstream failure, never rolled
// back. Client disconnect does not stop consumption: the stream runs on a
// context detached from the request, and placeholder writes use separate
// timeout contexts, so a later page load sees the completed answer. Only
// Cancel aborts a turn early.
//
// Turns for distinct conversations run fully in parallel; the per-
// conversation flag in turnTracker is the only shared mutable state.
package relay
