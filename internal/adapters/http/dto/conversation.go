package dto

import (
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// StartConversationRequest is the body of POST /conversations.
type StartConversationRequest struct {
	Participant1Language string `json:"participant1Language" validate:"required,target"`
	Participant2Language string `json:"participant2Language" validate:"required,target"`
	Mode                 string `json:"mode"                 validate:"omitempty,oneof=voice text mixed"`
}

// AddMessageRequest is the body of POST /conversations/:id/messages.
type AddMessageRequest struct {
	Participant string `json:"participant" validate:"required,oneof=participant1 participant2"`
	Text        string `json:"text"        validate:"required,notempty,max=5000"`
}

// ConversationResponse wraps one conversation.
type ConversationResponse struct {
	Meta
	Conversation *domain.Conversation `json:"conversation"`
}

// ConversationsResponse wraps the conversation list.
type ConversationsResponse struct {
	Meta
	Conversations []domain.Conversation `json:"conversations"`
	Count         int                   `json:"count"`
}

// MessageResponse wraps an appended message.
type MessageResponse struct {
	Meta
	ConversationID string          `json:"conversationId"`
	Message        *domain.Message `json:"message"`
}

// SessionRequest is the body of the single-shot POST /conversation.
type SessionRequest struct {
	Message       string `json:"message"       validate:"required,notempty,max=5000"`
	ParticipantID string `json:"participantId" validate:"required,notempty,max=64"`
	Language      string `json:"language"      validate:"omitempty,target"`
	SessionID     string `json:"sessionId"     validate:"max=64"`
}

// Domain converts the body into a session message.
func (r SessionRequest) Domain() app.SessionMessage {
	return app.SessionMessage{
		Message:       r.Message,
		ParticipantID: r.ParticipantID,
		Language:      r.Language,
		SessionID:     r.SessionID,
	}
}

// SessionResponse answers POST /conversation.
type SessionResponse struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	Translation   string    `json:"translation"`
	Provider      string    `json:"provider"`
	ParticipantID string    `json:"participantId"`
	SessionID     string    `json:"sessionId"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewSessionResponse converts a session reply.
func NewSessionResponse(r *app.SessionReply) SessionResponse {
	return SessionResponse{
		Success:       true,
		Message:       r.Message,
		Translation:   r.Translation,
		Provider:      r.Provider,
		ParticipantID: r.ParticipantID,
		SessionID:     r.SessionID,
		Timestamp:     r.Timestamp.UTC(),
	}
}

// ConversationURI binds the :id path parameter of /conversations/:id.
type ConversationURI struct {
	ID string `uri:"id" validate:"required,uuid"`
}
