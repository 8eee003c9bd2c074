package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/app/uow"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// Message types.
const (
	MessageText  = "text"
	MessageVoice = "voice"
)

// DefaultSessionLanguage is the target language of a session message when
// the caller gives none.
const DefaultSessionLanguage = "en"

// SessionMessage is one message sent through the single-shot session endpoint.
type SessionMessage struct {
	Message       string
	ParticipantID string
	Language      string
	SessionID     string
}

// SessionReply is the translated session message.
type SessionReply struct {
	Message       string
	Translation   string
	Provider      string
	ParticipantID string
	SessionID     string
	Timestamp     time.Time
}

// ConversationService runs two-party translated conversations.
type ConversationService struct {
	repo   ports.ConversationRepository
	engine *TranslationService
	speech *SpeechService
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	locks keyedLocks
}

// NewConversationService creates the service. speech may be nil, in which
// case voice conversations carry no audio.
func NewConversationService(repo ports.ConversationRepository, engine *TranslationService, speech *SpeechService, logger *slog.Logger) *ConversationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ConversationService{
		repo:   repo,
		engine: engine,
		speech: speech,
		logger: logger.With(slog.String("component", "app.ConversationService")),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Start opens a conversation between speakers of p1Lang and p2Lang.
func (s *ConversationService) Start(ctx context.Context, p1Lang, p2Lang string, mode domain.ConversationMode) (*domain.Conversation, error) {
	p1Lang = strings.ToLower(strings.TrimSpace(p1Lang))
	p2Lang = strings.ToLower(strings.TrimSpace(p2Lang))

	if err := domain.ValidateTarget(p1Lang); err != nil {
		return nil, domain.NewValidationError("participant1Language", err.Error())
	}
	if err := domain.ValidateTarget(p2Lang); err != nil {
		return nil, domain.NewValidationError("participant2Language", err.Error())
	}

	mode, err := domain.ParseConversationMode(string(mode))
	if err != nil {
		return nil, err
	}

	c := &domain.Conversation{
		ID: s.newID(),
		Participants: [2]domain.Participant{
			{ID: domain.Participant1, Language: p1Lang},
			{ID: domain.Participant2, Language: p2Lang},
		},
		Mode:      mode,
		Status:    domain.StatusActive,
		StartTime: s.now(),
		Messages:  []domain.Message{},
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	loggerFor(ctx, s.logger).InfoContext(ctx, "conversation started",
		slog.String("conversation_id", c.ID),
		slog.String("mode", string(mode)),
	)

	return c, nil
}

// AddMessage translates text from speaker into the other participant's
// language and appends it. Voice and mixed conversations also get audio.
func (s *ConversationService) AddMessage(ctx context.Context, id, speaker, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("text", "message text is required")
	}

	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from, ok := c.Participant(speaker)
	if !ok {
		return nil, domain.NewValidationError("participant", "must be participant1 or participant2")
	}
	to, _ := c.TargetLanguage(speaker)

	if c.Status != domain.StatusActive {
		return nil, domain.NewConflictError("conversation", "messages can only be added while active")
	}

	t, err := s.engine.Translate(ctx, domain.TranslateRequest{Text: text, SourceLang: from.Language, TargetLang: to})
	if err != nil {
		return nil, err
	}

	msg := domain.Message{
		ID:                 s.newID(),
		Speaker:            speaker,
		OriginalText:       text,
		OriginalLanguage:   from.Language,
		TranslatedText:     t.TranslatedText,
		TranslatedLanguage: to,
		Confidence:         t.Confidence,
		Provider:           t.Provider,
		Type:               MessageText,
		Timestamp:          s.now(),
	}

	unit := uow.New()

	if c.Mode.Speaks() && s.speech.CanSpeak() {
		var audioID string
		_ = unit.Add(uow.Func{
			Desc: "synthesize translated speech",
			Do: func(ctx context.Context) error {
				audio, err := s.speech.Synthesize(ctx, domain.SpeechRequest{Text: msg.TranslatedText, Language: to})
				if err != nil {
					// Audio is optional; the text message still goes through.
					loggerFor(ctx, s.logger).WarnContext(ctx, "message audio skipped", slog.Any("error", err))
					return nil
				}
				audioID = audio.ID
				msg.AudioURL = audio.URL
				msg.Type = MessageVoice
				return nil
			},
			Undo: func(ctx context.Context) error {
				if audioID == "" {
					return nil
				}
				return s.speech.DeleteAudio(ctx, audioID)
			},
		})
	}

	_ = unit.Add(uow.Func{
		Desc: "save conversation",
		Do: func(ctx context.Context) error {
			if err := c.Append(msg); err != nil {
				return err
			}
			return s.repo.Save(ctx, c)
		},
	})

	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}

	return &msg, nil
}

// Pause moves an active conversation to paused.
func (s *ConversationService) Pause(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.transition(ctx, id, "paused", (*domain.Conversation).Pause)
}

// Resume moves a paused conversation back to active.
func (s *ConversationService) Resume(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.transition(ctx, id, "resumed", (*domain.Conversation).Resume)
}

// End closes the conversation and records its duration.
func (s *ConversationService) End(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.transition(ctx, id, "ended", func(c *domain.Conversation) error {
		return c.End(s.now())
	})
}

// Get returns one conversation.
func (s *ConversationService) Get(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.repo.Get(ctx, id)
}

// List returns every stored conversation, newest first.
func (s *ConversationService) List(ctx context.Context) ([]domain.Conversation, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Conversation{}
	}
	return list, nil
}

// Delete removes a conversation.
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	return s.repo.Delete(ctx, id)
}

// Converse translates one message inside a session, opening the session on
// first use. The session's second participant speaks the target language.
func (s *ConversationService) Converse(ctx context.Context, in SessionMessage) (*SessionReply, error) {
	text := strings.TrimSpace(in.Message)
	if text == "" || strings.TrimSpace(in.ParticipantID) == "" {
		return nil, domain.NewValidationError("", "message and participantId are required")
	}

	target := strings.ToLower(strings.TrimSpace(in.Language))
	if target == "" {
		target = DefaultSessionLanguage
	}
	if err := domain.ValidateTarget(target); err != nil {
		return nil, err
	}

	if in.SessionID == "" {
		in.SessionID = s.newID()
	}

	unlock := s.locks.lock(in.SessionID)
	defer unlock()

	c, err := s.repo.Get(ctx, in.SessionID)
	switch {
	case domain.IsNotFound(err):
		c = &domain.Conversation{
			ID: in.SessionID,
			Participants: [2]domain.Participant{
				{ID: domain.Participant1, Language: domain.AutoDetect},
				{ID: domain.Participant2, Language: target},
			},
			Mode:      domain.ConversationText,
			Status:    domain.StatusActive,
			StartTime: s.now(),
		}
	case err != nil:
		return nil, err
	}

	t, err := s.engine.Translate(ctx, domain.TranslateRequest{Text: text, TargetLang: target})
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = c.Append(domain.Message{
		ID:                 s.newID(),
		Speaker:            in.ParticipantID,
		OriginalText:       text,
		OriginalLanguage:   t.DetectedLanguage,
		TranslatedText:     t.TranslatedText,
		TranslatedLanguage: target,
		Confidence:         t.Confidence,
		Provider:           t.Provider,
		Type:               MessageText,
		Timestamp:          now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	return &SessionReply{
		Message:       text,
		Translation:   t.TranslatedText,
		Provider:      t.Provider,
		ParticipantID: in.ParticipantID,
		SessionID:     in.SessionID,
		Timestamp:     now,
	}, nil
}

func (s *ConversationService) transition(ctx context.Context, id, verb string, apply func(*domain.Conversation) error) (*domain.Conversation, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(c); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	loggerFor(ctx, s.logger).InfoContext(ctx, "conversation "+verb,
		slog.String("conversation_id", id),
		slog.Int("messages", len(c.Messages)),
	)

	return c, nil
}
