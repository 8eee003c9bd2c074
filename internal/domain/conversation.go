package domain

import (
	"strings"
	"time"
)

// ConversationMode controls whether translations are spoken.
type ConversationMode string

// Conversation modes.
const (
	ConversationVoice ConversationMode = "voice"
	ConversationText  ConversationMode = "text"
	ConversationMixed ConversationMode = "mixed"
)

// ParseConversationMode converts s to a ConversationMode. Empty input yields voice.
func ParseConversationMode(s string) (ConversationMode, error) {
	switch m := ConversationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ConversationVoice, nil
	case ConversationVoice, ConversationText, ConversationMixed:
		return m, nil
	default:
		return "", NewValidationError("mode", "must be one of voice, text, mixed")
	}
}

// Speaks reports whether translations in this mode are synthesized.
func (m ConversationMode) Speaks() bool {
	return m == ConversationVoice || m == ConversationMixed
}

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

// Conversation statuses.
const (
	StatusActive ConversationStatus = "active"
	StatusPaused ConversationStatus = "paused"
	StatusEnded  ConversationStatus = "ended"
)

// Participant identifiers.
const (
	Participant1 = "participant1"
	Participant2 = "participant2"
)

// MaxStoredConversations is how many ended conversations a store retains.
const MaxStoredConversations = 50

// Participant is one side of a conversation.
type Participant struct {
	ID       string `json:"id"`
	Language string `json:"language"`
}

// Message is one utterance and its translation.
type Message struct {
	ID                 string    `json:"id"`
	Speaker            string    `json:"speaker"`
	OriginalText       string    `json:"originalText"`
	OriginalLanguage   string    `json:"originalLanguage"`
	TranslatedText     string    `json:"translatedText"`
	TranslatedLanguage string    `json:"translatedLanguage"`
	Confidence         float64   `json:"confidence"`
	Provider           string    `json:"provider,omitempty"`
	AudioURL           string    `json:"audioUrl,omitempty"`
	Type               string    `json:"type"`
	Timestamp          time.Time `json:"timestamp"`
}

// Conversation is a two-party translated dialogue.
type Conversation struct {
	ID           string             `json:"id"`
	Participants [2]Participant     `json:"participants"`
	Mode         ConversationMode   `json:"mode"`
	Status       ConversationStatus `json:"status"`
	StartTime    time.Time          `json:"startTime"`
	EndTime      *time.Time         `json:"endTime,omitempty"`
	Duration     time.Duration      `json:"duration,omitempty"`
	MessageCount int                `json:"messageCount"`
	Messages     []Message          `json:"messages"`
}

// Participant returns the participant with the given id.
func (c *Conversation) Participant(id string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// TargetLanguage returns the language of the participant other than speaker.
func (c *Conversation) TargetLanguage(speaker string) (string, bool) {
	switch speaker {
	case Participant1:
		return c.Participants[1].Language, true
	case Participant2:
		return c.Participants[0].Language, true
	default:
		return "", false
	}
}

// Pause moves an active conversation to paused.
func (c *Conversation) Pause() error {
	if c.Status != StatusActive {
		return NewConflictError("conversation", "only an active conversation can be paused")
	}
	c.Status = StatusPaused
	return nil
}

// Resume moves a paused conversation back to active.
func (c *Conversation) Resume() error {
	if c.Status != StatusPaused {
		return NewConflictError("conversation", "only a paused conversation can be resumed")
	}
	c.Status = StatusActive
	return nil
}

// End closes the conversation and records its duration.
func (c *Conversation) End(now time.Time) error {
	if c.Status == StatusEnded {
		return NewConflictError("conversation", "already ended")
	}
	c.Status = StatusEnded
	c.EndTime = &now
	c.Duration = now.Sub(c.StartTime)
	c.MessageCount = len(c.Messages)
	return nil
}

// Append adds a message to an active conversation.
func (c *Conversation) Append(m Message) error {
	if c.Status != StatusActive {
		return NewConflictError("conversation", "messages can only be added while active")
	}
	c.Messages = append(c.Messages, m)
	c.MessageCount = len(c.Messages)
	return nil
}
