package dto

import (
	"github.com/voicetranslatorpro/voice-translator-pro/internal/app"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// CreateGroupRequest is the body of POST /groups.
type CreateGroupRequest struct {
	Name            string `json:"name"            validate:"max=100"`
	AdminID         string `json:"adminId"         validate:"required,notempty,max=64"`
	AdminName       string `json:"adminName"       validate:"max=100"`
	AdminLanguage   string `json:"adminLanguage"   validate:"required,target"`
	AutoTranslate   *bool  `json:"autoTranslate"`
	MaxParticipants int    `json:"maxParticipants" validate:"omitempty,min=2,max=50"`
}

// Domain converts the body into a group to create.
func (r CreateGroupRequest) Domain() app.NewGroup {
	return app.NewGroup{
		Name:            r.Name,
		AdminID:         r.AdminID,
		AdminName:       r.AdminName,
		AdminLanguage:   r.AdminLanguage,
		AutoTranslate:   r.AutoTranslate,
		MaxParticipants: r.MaxParticipants,
	}
}

// JoinGroupRequest is the body of POST /groups/:id/join.
type JoinGroupRequest struct {
	ParticipantID string `json:"participantId" validate:"required,notempty,max=64"`
	Name          string `json:"name"          validate:"max=100"`
	Language      string `json:"language"      validate:"required,target"`
}

// GroupMemberRequest names the acting member of /groups/:id/leave and /end.
type GroupMemberRequest struct {
	ParticipantID string `json:"participantId" validate:"required,notempty,max=64"`
}

// SendGroupMessageRequest is the body of POST /groups/:id/messages.
type SendGroupMessageRequest struct {
	SenderID string `json:"senderId" validate:"required,notempty,max=64"`
	Text     string `json:"text"     validate:"required,notempty,max=5000"`
}

// GroupSettingsRequest is the body of PATCH /groups/:id/settings.
type GroupSettingsRequest struct {
	ParticipantID   string `json:"participantId"   validate:"required,notempty,max=64"`
	AutoTranslate   *bool  `json:"autoTranslate"`
	MaxParticipants *int   `json:"maxParticipants" validate:"omitempty,min=2,max=50"`
}

// Domain converts the body into a settings update.
func (r GroupSettingsRequest) Domain() app.GroupSettingsUpdate {
	return app.GroupSettingsUpdate{AutoTranslate: r.AutoTranslate, MaxParticipants: r.MaxParticipants}
}

// GroupResponse wraps one group.
type GroupResponse struct {
	Meta
	Group *domain.Group `json:"group"`
}

// GroupsResponse wraps the group list.
type GroupsResponse struct {
	Meta
	Groups []domain.Group `json:"groups"`
	Count  int            `json:"count"`
}

// GroupMessageResponse wraps a posted group message.
type GroupMessageResponse struct {
	Meta
	GroupID string               `json:"groupId"`
	Message *domain.GroupMessage `json:"message"`
}

// GroupURI binds the :id path parameter of /groups/:id.
type GroupURI struct {
	ID string `uri:"id" validate:"required,uuid"`
}
