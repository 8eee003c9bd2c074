package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/storage/memory"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
)

type groupFixture struct {
	engine *engineFixture
	svc    *GroupService
	clock  time.Time
}

func newGroupFixture() *groupFixture {
	f := &groupFixture{
		engine: newEngineFixture(),
		clock:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	engine := f.engine.service(TranslationConfig{Primary: "google"}, nil, nil)
	f.svc = NewGroupService(memory.NewGroupStore(), engine, discardLogger())

	ids := 0
	f.svc.now = func() time.Time { return f.clock }
	f.svc.newID = func() string {
		ids++
		return fmt.Sprintf("id-%d", ids)
	}

	return f
}

func (f *groupFixture) create(t *testing.T) *domain.Group {
	t.Helper()

	g, err := f.svc.Create(context.Background(), NewGroup{AdminID: "amal", AdminName: "Amal", AdminLanguage: "ar"})
	require.NoError(t, err)
	return g
}

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestGroup_Create(t *testing.T) {
	f := newGroupFixture()

	g, err := f.svc.Create(context.Background(), NewGroup{AdminID: " amal ", AdminLanguage: "AR"})
	require.NoError(t, err)
	assert.Equal(t, DefaultGroupName, g.Name)
	assert.Equal(t, "amal", g.AdminID)
	assert.Equal(t, "ar", g.Members[0].Language)
	assert.Equal(t, DefaultAdminName, g.Members[0].Name)
	assert.Equal(t, domain.GroupSettings{AutoTranslate: true, MaxParticipants: domain.DefaultGroupSize}, g.Settings)

	g, err = f.svc.Create(context.Background(), NewGroup{
		Name: "Trip", AdminID: "amal", AdminLanguage: "ar",
		AutoTranslate: boolPtr(false), MaxParticipants: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GroupSettings{MaxParticipants: 3}, g.Settings)

	tests := []struct {
		name string
		in   NewGroup
	}{
		{"missing admin", NewGroup{AdminLanguage: "ar"}},
		{"auto language", NewGroup{AdminID: "a", AdminLanguage: "auto"}},
		{"unknown language", NewGroup{AdminID: "a", AdminLanguage: "klingon"}},
		{"too large", NewGroup{AdminID: "a", AdminLanguage: "en", MaxParticipants: domain.MaxGroupSize + 1}},
		{"too small", NewGroup{AdminID: "a", AdminLanguage: "en", MaxParticipants: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.in)
			assert.True(t, domain.IsValidation(err), "got %v", err)
		})
	}
}

func TestGroup_JoinAndLeaveAnnounce(t *testing.T) {
	f := newGroupFixture()
	g := f.create(t)

	g, err := f.svc.Join(context.Background(), g.ID, "ben", "Ben", "en")
	require.NoError(t, err)
	require.Len(t, g.Members, 2)
	require.Len(t, g.Messages, 1)
	assert.Equal(t, domain.GroupMessageSystem, g.Messages[0].Type)
	assert.Equal(t, "Ben joined the group", g.Messages[0].Content)

	_, err = f.svc.Join(context.Background(), g.ID, "ben", "Ben", "en")
	assert.True(t, domain.IsConflict(err))

	g, err = f.svc.Leave(context.Background(), g.ID, "amal")
	require.NoError(t, err)
	assert.Equal(t, "ben", g.AdminID)
	assert.Equal(t, "Amal left the group", g.Messages[1].Content)

	g, err = f.svc.Leave(context.Background(), g.ID, "ben")
	require.NoError(t, err)
	assert.Equal(t, domain.GroupEnded, g.Status)
	assert.Len(t, g.Messages, 2)

	_, err = f.svc.Join(context.Background(), "missing", "ben", "Ben", "en")
	assert.True(t, domain.IsNotFound(err))
}

func TestGroup_SendTranslatesForEveryOtherLanguage(t *testing.T) {
	f := newGroupFixture()
	g := f.create(t)
	for _, m := range [][2]string{{"ben", "en"}, {"chen", "zh"}, {"dana", "en"}} {
		_, err := f.svc.Join(context.Background(), g.ID, m[0], "", m[1])
		require.NoError(t, err)
	}

	f.engine.google.On("Translate", mock.Anything, mock.MatchedBy(func(r domain.TranslateRequest) bool {
		return r.SourceLang == "ar" && r.TargetLang == "en"
	})).Return(translation("", "Hello", 0.9), nil).Once()
	f.engine.google.On("Translate", mock.Anything, mock.MatchedBy(func(r domain.TranslateRequest) bool {
		return r.TargetLang == "zh"
	})).Return(nil, errors.New("503 service unavailable")).Once()

	msg, err := f.svc.Send(context.Background(), g.ID, "amal", "  مرحبا  ")
	require.NoError(t, err)
	assert.Equal(t, "مرحبا", msg.Content)
	assert.Equal(t, "ar", msg.Language)
	assert.Equal(t, "Amal", msg.SenderName)
	require.Len(t, msg.Translations, 1)
	assert.Equal(t, "Hello", msg.Translations["en"].Text)
	assert.Equal(t, "google", msg.Translations["en"].Provider)

	stored, err := f.svc.Get(context.Background(), g.ID)
	require.NoError(t, err)
	last := stored.Messages[len(stored.Messages)-1]
	assert.Equal(t, msg.ID, last.ID)
	admin, _ := stored.Member("amal")
	assert.Equal(t, 1, admin.MessageCount)
	f.engine.assertExpectations(t)
}

func TestGroup_SendWithoutAutoTranslate(t *testing.T) {
	f := newGroupFixture()
	g := f.create(t)
	_, err := f.svc.Join(context.Background(), g.ID, "ben", "Ben", "en")
	require.NoError(t, err)

	_, err = f.svc.UpdateSettings(context.Background(), g.ID, "amal", GroupSettingsUpdate{AutoTranslate: boolPtr(false)})
	require.NoError(t, err)

	msg, err := f.svc.Send(context.Background(), g.ID, "ben", "hi")
	require.NoError(t, err)
	assert.Empty(t, msg.Translations)
	f.engine.google.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything)
}

func TestGroup_SendRejects(t *testing.T) {
	f := newGroupFixture()
	g := f.create(t)

	_, err := f.svc.Send(context.Background(), g.ID, "amal", "   ")
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.Send(context.Background(), g.ID, "zoe", "hi")
	assert.True(t, domain.IsNotFound(err))

	_, err = f.svc.End(context.Background(), g.ID, "amal")
	require.NoError(t, err)
	_, err = f.svc.Send(context.Background(), g.ID, "amal", "hi")
	assert.True(t, domain.IsConflict(err))
}

func TestGroup_AdminOnlyOperations(t *testing.T) {
	f := newGroupFixture()
	g := f.create(t)
	_, err := f.svc.Join(context.Background(), g.ID, "ben", "Ben", "en")
	require.NoError(t, err)
	_, err = f.svc.Join(context.Background(), g.ID, "chen", "Chen", "zh")
	require.NoError(t, err)

	_, err = f.svc.End(context.Background(), g.ID, "ben")
	assert.True(t, domain.IsForbidden(err))

	_, err = f.svc.UpdateSettings(context.Background(), g.ID, "ben", GroupSettingsUpdate{MaxParticipants: intPtr(5)})
	assert.True(t, domain.IsForbidden(err))

	_, err = f.svc.UpdateSettings(context.Background(), g.ID, "amal", GroupSettingsUpdate{MaxParticipants: intPtr(2)})
	assert.True(t, domain.IsValidation(err), "below current member count")

	g, err = f.svc.UpdateSettings(context.Background(), g.ID, "amal", GroupSettingsUpdate{MaxParticipants: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Settings.MaxParticipants)

	_, err = f.svc.Join(context.Background(), g.ID, "dana", "Dana", "en")
	assert.True(t, domain.IsConflict(err))

	g, err = f.svc.End(context.Background(), g.ID, "amal")
	require.NoError(t, err)
	assert.Equal(t, domain.GroupEnded, g.Status)
	assert.Equal(t, f.clock, *g.EndedAt)
}

func TestGroup_ListAndDelete(t *testing.T) {
	f := newGroupFixture()

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	g := f.create(t)
	list, err = f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.svc.Delete(context.Background(), g.ID))
	assert.True(t, domain.IsNotFound(f.svc.Delete(context.Background(), g.ID)))
	assert.Empty(t, f.svc.locks.locks)
}
