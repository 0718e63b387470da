package domain

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown to the store.
var ErrSessionNotFound = errors.New("session not found")

// Mode is the conversation state the chatbot is in for a session.
type Mode string

const (
	ModeIntro    Mode = "intro"
	ModeDiscover Mode = "discover"
	ModeQA       Mode = "qa"
	ModeQualify  Mode = "qualify"
	ModeConvert  Mode = "convert"
	ModeCapture  Mode = "capture"
	ModeExit     Mode = "exit"
)

// Role constants for chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn in a chat session. Immutable once appended.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactInfo holds contact details inferred from the conversation.
// Email is sticky: once set it is never overwritten or cleared.
type ContactInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Metadata is the partial record of attributes inferred from user utterances.
type Metadata struct {
	Service string      `json:"service,omitempty"`
	Budget  string      `json:"budget,omitempty"`
	Urgency string      `json:"urgency,omitempty"`
	Intent  string      `json:"intent,omitempty"`
	Contact ContactInfo `json:"contactInfo,omitzero"`
}

// Session tracks one visitor's conversation with the sales chatbot.
// LeadScore never decreases; IsConverted never resets once true.
type Session struct {
	ID          string    `json:"id"`
	Mode        Mode      `json:"mode"`
	Messages    []Message `json:"messages,omitempty"`
	LeadScore   int       `json:"leadScore"`
	Metadata    Metadata  `json:"metadata"`
	IsConverted bool      `json:"isConverted"`
	IsClosed    bool      `json:"isClosed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Append adds a message to the in-memory history and refreshes UpdatedAt.
func (s *Session) Append(role, content string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content, Timestamp: at})
	s.UpdatedAt = at
}

// LastUserMessage returns the content of the most recent user message,
// or "" if there is none.
func (s *Session) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}
