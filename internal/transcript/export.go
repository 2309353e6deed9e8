// Package transcript dumps the current conversation to Markdown or JSON.
// Exports are one-way: nothing reads them back.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diogo/optchat/internal/models"
)

// Format represents the export format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Options configures how a transcript is rendered
type Options struct {
	Format           Format
	Title            string
	IncludeOptions   bool // list each message's option set
	IncludeTimestamp bool
}

// DefaultOptions returns sensible defaults for export
func DefaultOptions() Options {
	return Options{
		Format:           FormatMarkdown,
		Title:            "Chat transcript",
		IncludeOptions:   true,
		IncludeTimestamp: true,
	}
}

// FormatForPath picks JSON for .json files and Markdown otherwise
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// settled drops placeholder entries; a transcript only records real messages
func settled(msgs []models.Message) []models.Message {
	out := make([]models.Message, 0, len(msgs))
	for _, m := range msgs {
		if !m.Placeholder {
			out = append(out, m)
		}
	}
	return out
}

// Markdown renders the conversation as Markdown
func Markdown(msgs []models.Message, opts Options) string {
	msgs = settled(msgs)

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(opts.Title)
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n\n", len(msgs)))

	for i, msg := range msgs {
		role := "User"
		if msg.Role == models.RoleAssistant {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if opts.IncludeTimestamp && !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if opts.IncludeOptions && msg.HasOptions() {
			sb.WriteString("\n")
			sb.WriteString(fmt.Sprintf("_Options (%s):_\n\n", msg.EffectiveLayout()))
			for _, o := range msg.Options {
				sb.WriteString("- ")
				sb.WriteString(o)
				sb.WriteString("\n")
			}
		}

		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	ID        string     `json:"id"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Options   []string   `json:"options,omitempty"`
	Layout    string     `json:"options_layout,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type exportTranscript struct {
	Title    string          `json:"title"`
	Exported time.Time       `json:"exported_at"`
	Messages []exportMessage `json:"messages"`
}

// JSON renders the conversation as indented JSON
func JSON(msgs []models.Message, opts Options) ([]byte, error) {
	msgs = settled(msgs)

	out := exportTranscript{
		Title:    opts.Title,
		Exported: time.Now().UTC(),
		Messages: make([]exportMessage, 0, len(msgs)),
	}
	for _, msg := range msgs {
		em := exportMessage{
			ID:      msg.ID,
			Role:    msg.Role.String(),
			Content: msg.Content,
		}
		if opts.IncludeOptions && msg.HasOptions() {
			em.Options = msg.Options
			em.Layout = string(msg.EffectiveLayout())
		}
		if opts.IncludeTimestamp && !msg.CreatedAt.IsZero() {
			ts := msg.CreatedAt
			em.Timestamp = &ts
		}
		out.Messages = append(out.Messages, em)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

// Write exports msgs to path, choosing the format from the extension
func Write(path string, msgs []models.Message) error {
	opts := DefaultOptions()
	opts.Format = FormatForPath(path)

	var data []byte
	switch opts.Format {
	case FormatJSON:
		var err error
		data, err = JSON(msgs, opts)
		if err != nil {
			return err
		}
	default:
		data = []byte(Markdown(msgs, opts))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
