package domain

import (
	"fmt"
	"slices"
	"time"
)

// Group limits.
const (
	DefaultGroupSize = 10
	MaxGroupSize     = 50

	// MaxStoredGroups is how many ended groups a store retains.
	MaxStoredGroups = 20
)

// Group message types.
const (
	GroupMessageText   = "text"
	GroupMessageVoice  = "voice"
	GroupMessageSystem = "system"
)

// GroupStatus is the lifecycle state of a group conversation.
type GroupStatus string

// Group statuses.
const (
	GroupActive GroupStatus = "active"
	GroupEnded  GroupStatus = "ended"
)

// GroupSettings control a group conversation.
type GroupSettings struct {
	AutoTranslate   bool `json:"autoTranslate"`
	MaxParticipants int  `json:"maxParticipants"`
}

// GroupMember is one participant of a group.
type GroupMember struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Language     string    `json:"language"`
	IsAdmin      bool      `json:"isAdmin"`
	JoinedAt     time.Time `json:"joinedAt"`
	MessageCount int       `json:"messageCount"`
}

// GroupTranslation is a message rendered in one member language.
type GroupTranslation struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Provider   string  `json:"provider,omitempty"`
}

// GroupMessage is one message and its translations keyed by language.
type GroupMessage struct {
	ID           string                      `json:"id"`
	SenderID     string                      `json:"senderId,omitempty"`
	SenderName   string                      `json:"senderName,omitempty"`
	Type         string                      `json:"type"`
	Language     string                      `json:"language,omitempty"`
	Content      string                      `json:"content"`
	Translations map[string]GroupTranslation `json:"translations,omitempty"`
	Timestamp    time.Time                   `json:"timestamp"`
}

// Group is a translated conversation between any number of members, each
// reading in their own language.
type Group struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	AdminID   string         `json:"adminId"`
	Status    GroupStatus    `json:"status"`
	Settings  GroupSettings  `json:"settings"`
	Members   []GroupMember  `json:"members"`
	Messages  []GroupMessage `json:"messages"`
	CreatedAt time.Time      `json:"createdAt"`
	EndedAt   *time.Time     `json:"endedAt,omitempty"`
}

// NewGroup opens a group with admin as its first member.
func NewGroup(id, name string, admin GroupMember, settings GroupSettings, now time.Time) *Group {
	admin.IsAdmin = true
	admin.JoinedAt = now

	return &Group{
		ID:        id,
		Name:      name,
		AdminID:   admin.ID,
		Status:    GroupActive,
		Settings:  settings,
		Members:   []GroupMember{admin},
		Messages:  []GroupMessage{},
		CreatedAt: now,
	}
}

// Member returns the member with the given id.
func (g *Group) Member(id string) (GroupMember, bool) {
	i := g.memberIndex(id)
	if i < 0 {
		return GroupMember{}, false
	}
	return g.Members[i], true
}

func (g *Group) memberIndex(id string) int {
	return slices.IndexFunc(g.Members, func(m GroupMember) bool { return m.ID == id })
}

// Join adds m to an active group that has room.
func (g *Group) Join(m GroupMember, now time.Time) error {
	if g.Status != GroupActive {
		return NewConflictError("group", "group has ended")
	}
	if g.memberIndex(m.ID) >= 0 {
		return NewConflictError("group", "participant already joined")
	}
	if len(g.Members) >= g.Settings.MaxParticipants {
		return NewConflictError("group", "group is full")
	}

	m.IsAdmin = false
	m.JoinedAt = now
	m.MessageCount = 0
	g.Members = append(g.Members, m)

	return nil
}

// Leave removes a member. When the admin leaves, the longest-standing
// remaining member becomes admin. The group ends when its last member leaves.
func (g *Group) Leave(id string, now time.Time) (GroupMember, error) {
	if g.Status != GroupActive {
		return GroupMember{}, NewConflictError("group", "group has ended")
	}
	i := g.memberIndex(id)
	if i < 0 {
		return GroupMember{}, NewNotFoundError("participant", id)
	}

	left := g.Members[i]
	g.Members = slices.Delete(g.Members, i, i+1)

	switch {
	case len(g.Members) == 0:
		g.end(now)
	case left.IsAdmin:
		g.Members[0].IsAdmin = true
		g.AdminID = g.Members[0].ID
	}

	return left, nil
}

// End closes the group. Only the admin may end it.
func (g *Group) End(by string, now time.Time) error {
	if g.Status == GroupEnded {
		return NewConflictError("group", "already ended")
	}
	if by != g.AdminID {
		return fmt.Errorf("%w: only the group admin can end the group", ErrForbidden)
	}
	g.end(now)
	return nil
}

func (g *Group) end(now time.Time) {
	g.Status = GroupEnded
	g.EndedAt = &now
}

// Post appends a member message and counts it for the sender.
func (g *Group) Post(m GroupMessage) error {
	if g.Status != GroupActive {
		return NewConflictError("group", "messages can only be sent while active")
	}
	i := g.memberIndex(m.SenderID)
	if i < 0 {
		return NewNotFoundError("participant", m.SenderID)
	}

	g.Members[i].MessageCount++
	g.Messages = append(g.Messages, m)

	return nil
}

// Announce appends a system message.
func (g *Group) Announce(id, content string, now time.Time) {
	g.Messages = append(g.Messages, GroupMessage{
		ID:        id,
		Type:      GroupMessageSystem,
		Content:   content,
		Timestamp: now,
	})
}

// TargetLanguages returns the distinct languages of members other than
// sender that differ from lang, in join order.
func (g *Group) TargetLanguages(sender, lang string) []string {
	var out []string
	for _, m := range g.Members {
		if m.ID == sender || m.Language == lang || slices.Contains(out, m.Language) {
			continue
		}
		out = append(out, m.Language)
	}
	return out
}
