package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// Default display names.
const (
	DefaultGroupName = "Group conversation"
	DefaultAdminName = "Admin"
)

// NewGroup describes a group to create.
type NewGroup struct {
	Name          string
	AdminID       string
	AdminName     string
	AdminLanguage string

	// AutoTranslate defaults to true when nil.
	AutoTranslate *bool

	// MaxParticipants defaults to domain.DefaultGroupSize when zero.
	MaxParticipants int
}

// GroupSettingsUpdate changes the non-nil settings.
type GroupSettingsUpdate struct {
	AutoTranslate   *bool
	MaxParticipants *int
}

// GroupService runs group conversations in which each member reads every
// message in their own language.
type GroupService struct {
	repo   ports.GroupRepository
	engine *TranslationService
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	locks keyedLocks
}

// NewGroupService creates the service.
func NewGroupService(repo ports.GroupRepository, engine *TranslationService, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}

	return &GroupService{
		repo:   repo,
		engine: engine,
		logger: logger.With(slog.String("component", "app.GroupService")),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create opens a group with the caller as admin.
func (s *GroupService) Create(ctx context.Context, in NewGroup) (*domain.Group, error) {
	admin, err := newMember(in.AdminID, in.AdminName, in.AdminLanguage, "admin")
	if err != nil {
		return nil, err
	}
	if admin.Name == "" {
		admin.Name = DefaultAdminName
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultGroupName
	}

	settings := domain.GroupSettings{AutoTranslate: true, MaxParticipants: domain.DefaultGroupSize}
	if in.AutoTranslate != nil {
		settings.AutoTranslate = *in.AutoTranslate
	}
	if in.MaxParticipants != 0 {
		if err := validateGroupSize(in.MaxParticipants, 1); err != nil {
			return nil, err
		}
		settings.MaxParticipants = in.MaxParticipants
	}

	g := domain.NewGroup(s.newID(), name, admin, settings, s.now())

	if err := s.repo.Save(ctx, g); err != nil {
		return nil, err
	}

	loggerFor(ctx, s.logger).InfoContext(ctx, "group created",
		slog.String("group_id", g.ID),
		slog.Int("max_participants", settings.MaxParticipants),
	)

	return g, nil
}

// Join adds a member and announces them to the group.
func (s *GroupService) Join(ctx context.Context, groupID, memberID, name, language string) (*domain.Group, error) {
	m, err := newMember(memberID, name, language, "participant")
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = m.ID
	}

	return s.update(ctx, groupID, "member joined", func(g *domain.Group) error {
		now := s.now()
		if err := g.Join(m, now); err != nil {
			return err
		}
		g.Announce(s.newID(), m.Name+" joined the group", now)
		return nil
	})
}

// Leave removes a member. The group ends when its last member leaves.
func (s *GroupService) Leave(ctx context.Context, groupID, memberID string) (*domain.Group, error) {
	return s.update(ctx, groupID, "member left", func(g *domain.Group) error {
		now := s.now()
		left, err := g.Leave(memberID, now)
		if err != nil {
			return err
		}
		if g.Status == domain.GroupActive {
			g.Announce(s.newID(), left.Name+" left the group", now)
		}
		return nil
	})
}

// End closes the group on behalf of its admin.
func (s *GroupService) End(ctx context.Context, groupID, by string) (*domain.Group, error) {
	return s.update(ctx, groupID, "group ended", func(g *domain.Group) error {
		return g.End(by, s.now())
	})
}

// UpdateSettings changes group settings on behalf of its admin.
func (s *GroupService) UpdateSettings(ctx context.Context, groupID, by string, upd GroupSettingsUpdate) (*domain.Group, error) {
	return s.update(ctx, groupID, "group settings updated", func(g *domain.Group) error {
		if g.Status != domain.GroupActive {
			return domain.NewConflictError("group", "group has ended")
		}
		if by != g.AdminID {
			return fmt.Errorf("%w: only the group admin can change settings", domain.ErrForbidden)
		}
		if upd.MaxParticipants != nil {
			if err := validateGroupSize(*upd.MaxParticipants, len(g.Members)); err != nil {
				return err
			}
			g.Settings.MaxParticipants = *upd.MaxParticipants
		}
		if upd.AutoTranslate != nil {
			g.Settings.AutoTranslate = *upd.AutoTranslate
		}
		g.Announce(s.newID(), "Group settings updated", s.now())
		return nil
	})
}

// Send posts a member message. With auto-translate on, the text is
// translated into every other member language. A failed language is logged
// and left out of the message.
func (s *GroupService) Send(ctx context.Context, groupID, senderID, text string) (*domain.GroupMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "message text is required")
	}

	unlock := s.locks.lock(groupID)
	defer unlock()

	g, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.Status != domain.GroupActive {
		return nil, domain.NewConflictError("group", "messages can only be sent while active")
	}

	sender, ok := g.Member(senderID)
	if !ok {
		return nil, domain.NewNotFoundError("participant", senderID)
	}

	msg := domain.GroupMessage{
		ID:           s.newID(),
		SenderID:     sender.ID,
		SenderName:   sender.Name,
		Type:         domain.GroupMessageText,
		Language:     sender.Language,
		Content:      text,
		Translations: map[string]domain.GroupTranslation{},
		Timestamp:    s.now(),
	}

	if g.Settings.AutoTranslate {
		s.translateForMembers(ctx, g, &msg)
	}

	if err := g.Post(msg); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, g); err != nil {
		return nil, err
	}

	return &msg, nil
}

func (s *GroupService) translateForMembers(ctx context.Context, g *domain.Group, msg *domain.GroupMessage) {
	targets := g.TargetLanguages(msg.SenderID, msg.Language)
	if len(targets) == 0 {
		return
	}

	fns := make([]func(context.Context) (*domain.Translation, error), len(targets))
	for i, lang := range targets {
		fns[i] = func(ctx context.Context) (*domain.Translation, error) {
			return s.engine.Translate(ctx, domain.TranslateRequest{
				Text:       msg.Content,
				SourceLang: msg.Language,
				TargetLang: lang,
			})
		}
	}

	for i, r := range ParallelPartial(ctx, fns...) {
		if r.Err != nil {
			loggerFor(ctx, s.logger).WarnContext(ctx, "group translation skipped",
				slog.String("group_id", g.ID),
				slog.String("target_lang", targets[i]),
				slog.Any("error", r.Err),
			)
			continue
		}
		msg.Translations[targets[i]] = domain.GroupTranslation{
			Text:       r.Value.TranslatedText,
			Confidence: r.Value.Confidence,
			Provider:   r.Value.Provider,
		}
	}
}

// Get returns one group.
func (s *GroupService) Get(ctx context.Context, id string) (*domain.Group, error) {
	return s.repo.Get(ctx, id)
}

// List returns every stored group, newest first.
func (s *GroupService) List(ctx context.Context) ([]domain.Group, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Group{}
	}
	return list, nil
}

// Delete removes a group.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.repo.Delete(ctx, id)
}

func (s *GroupService) update(ctx context.Context, id, event string, apply func(*domain.Group) error) (*domain.Group, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(g); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, g); err != nil {
		return nil, err
	}

	loggerFor(ctx, s.logger).InfoContext(ctx, event,
		slog.String("group_id", id),
		slog.Int("members", len(g.Members)),
	)

	return g, nil
}

func newMember(id, name, language, field string) (domain.GroupMember, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.GroupMember{}, domain.NewValidationError(field+"Id", "is required")
	}

	language = strings.ToLower(strings.TrimSpace(language))
	if err := domain.ValidateTarget(language); err != nil {
		return domain.GroupMember{}, domain.NewValidationError(field+"Language", err.Error())
	}

	return domain.GroupMember{ID: id, Name: strings.TrimSpace(name), Language: language}, nil
}

func validateGroupSize(n, members int) error {
	low := max(members, 2)
	if n < low || n > domain.MaxGroupSize {
		return domain.NewValidationError("maxParticipants",
			fmt.Sprintf("must be between %d and %d", low, domain.MaxGroupSize))
	}
	return nil
}
