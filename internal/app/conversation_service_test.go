package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/memory"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

// flakyRepo fails Save once armed.
type flakyRepo struct {
	*memory.ConversationStore
	failSave bool
}

func (r *flakyRepo) Save(ctx context.Context, c *domain.Conversation) error {
	if r.failSave {
		return errors.New("database is locked")
	}
	return r.ConversationStore.Save(ctx, c)
}

type conversationFixture struct {
	engine *engineFixture
	synth  *mockSynthesizer
	audio  *memAudioStore
	repo   *flakyRepo
	svc    *ConversationService
	clock  time.Time
}

func newConversationFixture() *conversationFixture {
	f := &conversationFixture{
		engine: newEngineFixture(),
		synth:  &mockSynthesizer{},
		audio:  newMemAudioStore(),
		repo:   &flakyRepo{ConversationStore: memory.NewConversationStore()},
		clock:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	engine := f.engine.service(TranslationConfig{Primary: "google"}, nil, nil)
	speech := NewSpeechService(nil, f.synth, f.audio, engine, discardLogger())
	f.svc = NewConversationService(f.repo, engine, speech, discardLogger())

	ids := 0
	f.svc.now = func() time.Time { return f.clock }
	f.svc.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}

	return f
}

func TestConversation_Start(t *testing.T) {
	f := newConversationFixture()

	c, err := f.svc.Start(context.Background(), "EN", "ar", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ConversationVoice, c.Mode)
	assert.Equal(t, domain.StatusActive, c.Status)
	assert.Equal(t, "en", c.Participants[0].Language)

	tests := []struct {
		name   string
		p1, p2 string
		mode   domain.ConversationMode
	}{
		{"auto language", "auto", "ar", ""},
		{"unknown language", "en", "klingon", ""},
		{"bad mode", "en", "ar", "video"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Start(context.Background(), tt.p1, tt.p2, tt.mode)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestConversation_AddMessage(t *testing.T) {
	t.Run("text mode translates into the other language", func(t *testing.T) {
		f := newConversationFixture()
		f.engine.google.On("Translate", mock.Anything, mock.MatchedBy(func(r domain.TranslateRequest) bool {
			return r.SourceLang == "ar" && r.TargetLang == "en"
		})).Return(translation("google", "Good morning", 0.9), nil).Once()

		c, err := f.svc.Start(context.Background(), "en", "ar", domain.ConversationText)
		require.NoError(t, err)

		msg, err := f.svc.AddMessage(context.Background(), c.ID, domain.Participant2, " صباح الخير ")
		require.NoError(t, err)
		assert.Equal(t, "صباح الخير", msg.OriginalText)
		assert.Equal(t, "Good morning", msg.TranslatedText)
		assert.Equal(t, MessageText, msg.Type)
		assert.Empty(t, msg.AudioURL)

		stored, err := f.svc.Get(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.MessageCount)
		f.engine.assertExpectations(t)
		f.synth.AssertNotCalled(t, "Synthesize", mock.Anything, mock.Anything)
	})

	t.Run("voice mode attaches audio", func(t *testing.T) {
		f := newConversationFixture()
		f.engine.google.On("Translate", mock.Anything, mock.Anything).Return(translation("google", "مرحبا", 0.9), nil).Once()
		f.synth.On("Synthesize", mock.Anything, domain.SpeechRequest{Text: "مرحبا", Language: "ar", Voice: domain.DefaultVoice}).
			Return([]byte("mp3"), "audio/mpeg", nil).Once()

		c, err := f.svc.Start(context.Background(), "en", "ar", domain.ConversationVoice)
		require.NoError(t, err)

		msg, err := f.svc.AddMessage(context.Background(), c.ID, domain.Participant1, "Hello")
		require.NoError(t, err)
		assert.Equal(t, MessageVoice, msg.Type)
		assert.True(t, strings.HasPrefix(msg.AudioURL, AudioURLPrefix), msg.AudioURL)
		assert.Equal(t, 1, f.audio.len())
		f.synth.AssertExpectations(t)
	})

	t.Run("failed save removes the stored audio", func(t *testing.T) {
		f := newConversationFixture()
		f.engine.google.On("Translate", mock.Anything, mock.Anything).Return(translation("google", "مرحبا", 0.9), nil).Once()
		f.synth.On("Synthesize", mock.Anything, mock.Anything).Return([]byte("mp3"), "audio/mpeg", nil).Once()

		c, err := f.svc.Start(context.Background(), "en", "ar", domain.ConversationMixed)
		require.NoError(t, err)

		f.repo.failSave = true
		_, err = f.svc.AddMessage(context.Background(), c.ID, domain.Participant1, "Hello")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save conversation")
		assert.Equal(t, 0, f.audio.len())

		f.repo.failSave = false
		stored, err := f.svc.Get(context.Background(), c.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Messages)
	})

	t.Run("rejections", func(t *testing.T) {
		f := newConversationFixture()
		c, err := f.svc.Start(context.Background(), "en", "ar", domain.ConversationText)
		require.NoError(t, err)

		_, err = f.svc.AddMessage(context.Background(), c.ID, domain.Participant1, "  ")
		assert.True(t, domain.IsValidation(err))

		_, err = f.svc.AddMessage(context.Background(), c.ID, "participant3", "hi")
		assert.True(t, domain.IsValidation(err))

		_, err = f.svc.AddMessage(context.Background(), "missing", domain.Participant1, "hi")
		assert.True(t, domain.IsNotFound(err))

		_, err = f.svc.Pause(context.Background(), c.ID)
		require.NoError(t, err)
		_, err = f.svc.AddMessage(context.Background(), c.ID, domain.Participant1, "hi")
		assert.True(t, domain.IsConflict(err))

		f.engine.assertExpectations(t)
	})
}

func TestConversation_Lifecycle(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	c, err := f.svc.Start(ctx, "en", "ar", domain.ConversationText)
	require.NoError(t, err)

	_, err = f.svc.Resume(ctx, c.ID)
	assert.True(t, domain.IsConflict(err))

	c, err = f.svc.Pause(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, c.Status)

	c, err = f.svc.Resume(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, c.Status)

	f.clock = f.clock.Add(90 * time.Second)
	c, err = f.svc.End(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, c.Status)
	assert.Equal(t, 90*time.Second, c.Duration)
	require.NotNil(t, c.EndTime)

	_, err = f.svc.End(ctx, c.ID)
	assert.True(t, domain.IsConflict(err))

	list, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.Delete(ctx, c.ID))
	assert.True(t, domain.IsNotFound(f.svc.Delete(ctx, c.ID)))
	assert.Empty(t, f.svc.locks.locks)
}

func TestConverse_Session(t *testing.T) {
	f := newConversationFixture()
	ctx := context.Background()

	f.engine.google.On("Translate", mock.Anything, mock.MatchedBy(func(r domain.TranslateRequest) bool {
		return r.SourceLang == domain.AutoDetect && r.TargetLang == "en"
	})).Return(&domain.Translation{Provider: "google", TranslatedText: "Hello", DetectedLanguage: "es"}, nil).Twice()

	first, err := f.svc.Converse(ctx, SessionMessage{Message: "Hola", ParticipantID: "user-a"})
	require.NoError(t, err)
	assert.Equal(t, "Hello", first.Translation)
	assert.Equal(t, "id-1", first.SessionID)

	second, err := f.svc.Converse(ctx, SessionMessage{Message: "Hola otra vez", ParticipantID: "user-b", SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	c, err := f.svc.Get(ctx, first.SessionID)
	require.NoError(t, err)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, "es", c.Messages[0].OriginalLanguage)
	assert.Equal(t, "user-b", c.Messages[1].Speaker)

	_, err = f.svc.Converse(ctx, SessionMessage{Message: "Hola"})
	assert.True(t, domain.IsValidation(err))

	f.engine.assertExpectations(t)
}
