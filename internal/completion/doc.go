// Package completion wraps the upstream streaming chat-completion provider.
//
// The client is a thin pass-through: one upstream request per Stream, no
// retry, no backoff. The relay above it owns turning a failed stream into a
// consistent persisted state, so retry policy, if ever wanted, belongs there.
//
// The provider's push-based SSE wire format is exposed as a pull-based
// Stream (Recv returns fragments, io.EOF at natural end), which keeps the
// relay testable against a deterministic stand-in sequence.
package completion
