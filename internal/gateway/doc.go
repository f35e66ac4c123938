// Package gateway is the HTTP boundary for the conversation relay.
//
// JSON endpoints cover conversation CRUD; the live turn streams over SSE as
// data-only events ({"content"} fragments, then {"done"} or {"error"}). The
// boundary distinguishes setup failures, which still return JSON status
// bodies (404 unknown conversation, 409 turn in progress, 502 provider
// refusal), from mid-stream failures, which become a terminal error event
// followed by stream close.
//
// GET /conversations/{id}/view serves a server-rendered HTML transcript with
// assistant markdown converted by goldmark.
package gateway
