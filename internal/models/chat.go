package models

import "time"

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatMessage struct {
	ID            string    `json:"id"`
	Role          ChatRole  `json:"role"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	IsEditing     bool      `json:"is_editing"`
	EditedContent *string   `json:"edited_content,omitempty"`
}

// Clone returns a copy that does not alias the staged edit text.
func (m ChatMessage) Clone() ChatMessage {
	if m.EditedContent != nil {
		staged := *m.EditedContent
		m.EditedContent = &staged
	}
	return m
}
