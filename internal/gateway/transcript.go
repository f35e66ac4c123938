// ABOUTME: Server-rendered HTML transcript of a stored conversation
// ABOUTME: Assistant markdown is rendered with goldmark; user text is escaped

package gateway

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/prepaccel/prep-gateway/internal/store"
)

var transcriptTmpl = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
.message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 8px; }
.user { background: #eef2ff; }
.assistant { background: #f4f4f5; }
.role { font-size: 0.75rem; text-transform: uppercase; color: #666; margin-bottom: 0.25rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Messages}}
<div class="message {{.Role}}">
<div class="role">{{.Role}}</div>
<div>{{.Body}}</div>
</div>
{{end}}
</body>
</html>
`))

type transcriptMessage struct {
	Role string
	Body template.HTML
}

type transcriptData struct {
	Title    string
	Messages []transcriptMessage
}

// handleTranscript renders a read-only HTML view of a conversation.
func (g *Gateway) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	conv, err := g.store.GetConversation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		g.logger.Error("failed to get conversation", "error", err, "conversation_id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	msgs, err := g.store.ListMessages(r.Context(), id)
	if err != nil {
		g.logger.Error("failed to list messages", "error", err, "conversation_id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := transcriptData{Title: conv.Title}
	for _, msg := range msgs {
		if msg.Role == store.RoleSystem {
			continue
		}
		data.Messages = append(data.Messages, transcriptMessage{
			Role: msg.Role,
			Body: renderMessageBody(g, msg),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := transcriptTmpl.Execute(w, data); err != nil {
		g.logger.Error("failed to render transcript", "error", err, "conversation_id", id)
	}
}

// renderMessageBody converts assistant markdown to HTML and escapes
// everything else.
func renderMessageBody(g *Gateway, msg *store.Message) template.HTML {
	if msg.Role != store.RoleAssistant {
		return template.HTML(template.HTMLEscapeString(msg.Content))
	}

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(msg.Content), &buf); err != nil {
		g.logger.Error("failed to convert markdown", "error", err, "message_id", msg.ID)
		return template.HTML(template.HTMLEscapeString(msg.Content))
	}
	return template.HTML(buf.String())
}
