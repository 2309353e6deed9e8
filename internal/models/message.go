// Package models defines the data types shared by the conversation store,
// the dispatcher and the views.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// Layout controls how an option set is laid out
type Layout string

const (
	LayoutHorizontal Layout = "horizontal"
	LayoutVertical   Layout = "vertical"
)

// ParseLayout converts a string into a Layout. Unknown values fall back to horizontal.
func ParseLayout(s string) Layout {
	if Layout(s) == LayoutVertical {
		return LayoutVertical
	}
	return LayoutHorizontal
}

// Message represents a single entry in the conversation
type Message struct {
	ID          string
	Role        Role
	Content     string
	Options     []string
	Layout      Layout
	Placeholder bool // transient "generating" entry
	CreatedAt   time.Time
}

// NewUserMessage creates a user message with the given content
func NewUserMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantMessage creates an assistant message. An empty option list is
// stored as nil so that HasOptions stays meaningful.
func NewAssistantMessage(content string, options []string, layout Layout) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if len(options) > 0 {
		msg.Options = append([]string(nil), options...)
		msg.Layout = layout
	}
	return msg
}

// NewPlaceholderMessage creates the transient assistant entry shown while a
// response is pending
func NewPlaceholderMessage(content string) Message {
	msg := NewAssistantMessage(content, nil, "")
	msg.Placeholder = true
	return msg
}

// HasOptions reports whether the message carries an option set
func (m Message) HasOptions() bool {
	return len(m.Options) > 0
}

// EffectiveLayout returns the layout to render options with
func (m Message) EffectiveLayout() Layout {
	if m.Layout == "" {
		return LayoutHorizontal
	}
	return m.Layout
}

// Clone returns a copy that shares no slices with m
func (m Message) Clone() Message {
	if m.Options != nil {
		m.Options = append([]string(nil), m.Options...)
	}
	return m
}
