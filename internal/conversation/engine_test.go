package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/holabot/internal/ai"
	"github.com/example/holabot/pkg/models"
)

type fakeSessionStore struct {
	active   *models.ConversationSession
	created  int
	appended []models.ChatMessage
	errors   []models.ErrorMade
}

func (f *fakeSessionStore) ActiveForUser(_ context.Context, _ string) (*models.ConversationSession, error) {
	return f.active, nil
}

func (f *fakeSessionStore) Create(_ context.Context, userID, sessionType string) (*models.ConversationSession, error) {
	f.created++
	f.active = &models.ConversationSession{ID: "s1", UserID: userID, SessionType: sessionType}
	return f.active, nil
}

func (f *fakeSessionStore) AppendMessage(_ context.Context, _, role, content string) error {
	f.appended = append(f.appended, models.ChatMessage{Role: role, Content: content})
	return nil
}

func (f *fakeSessionStore) AppendError(_ context.Context, _ string, errMade models.ErrorMade) error {
	f.errors = append(f.errors, errMade)
	return nil
}

func (f *fakeSessionStore) RecentMessages(_ context.Context, _ string, _ int) ([]models.ChatMessage, error) {
	return append([]models.ChatMessage(nil), f.appended...), nil
}

type fakeProgressStore struct {
	due []models.UserVocab
}

func (f *fakeProgressStore) DueForReview(_ context.Context, _ string, limit int, _ time.Time) ([]models.UserVocab, error) {
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

type fakeVocabStore struct {
	items map[string]*models.VocabItem
}

func (f *fakeVocabStore) GetByID(_ context.Context, id string) (*models.VocabItem, error) {
	return f.items[id], nil
}

type fakeGenerator struct {
	reply        string
	quickReply   string
	err          error
	systemPrompt string
	quickPrompts []string
}

func (f *fakeGenerator) CreateMessage(_ context.Context, systemPrompt string, _ []ai.Message) (string, error) {
	f.systemPrompt = systemPrompt
	return f.reply, f.err
}

func (f *fakeGenerator) QuickResponse(_ context.Context, _, userMessage string) (string, error) {
	f.quickPrompts = append(f.quickPrompts, userMessage)
	return f.quickReply, f.err
}

func testUser() *models.User {
	return &models.User{ID: "u1", CurrentLevel: models.LevelA1, DialectPreference: "latam"}
}

func newTestEngine(sessions *fakeSessionStore, gen *fakeGenerator) *Engine {
	e := New(sessions, &fakeProgressStore{}, &fakeVocabStore{}, gen)
	e.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestHandleFreeformCreatesSessionAndReplies(t *testing.T) {
	sessions := &fakeSessionStore{}
	gen := &fakeGenerator{reply: "¡Hola! ¿Cómo estás?"}
	e := newTestEngine(sessions, gen)

	reply, err := e.HandleFreeform(context.Background(), testUser(), "hola", true)
	require.NoError(t, err)

	assert.Equal(t, "¡Hola! ¿Cómo estás?", reply)
	assert.Equal(t, 1, sessions.created)
	require.Len(t, sessions.appended, 2)
	assert.Equal(t, "user", sessions.appended[0].Role)
	assert.Equal(t, "assistant", sessions.appended[1].Role)
}

func TestHandleFreeformReusesActiveSession(t *testing.T) {
	sessions := &fakeSessionStore{active: &models.ConversationSession{ID: "s0", UserID: "u1"}}
	gen := &fakeGenerator{reply: "Claro."}
	e := newTestEngine(sessions, gen)

	_, err := e.HandleFreeform(context.Background(), testUser(), "sí", false)
	require.NoError(t, err)
	assert.Equal(t, 0, sessions.created)
}

func TestHandleFreeformFallsBackOnGenerationFailure(t *testing.T) {
	sessions := &fakeSessionStore{}
	gen := &fakeGenerator{err: errors.New("upstream down")}
	e := newTestEngine(sessions, gen)

	reply, err := e.HandleFreeform(context.Background(), testUser(), "hola", true)
	require.NoError(t, err)
	assert.Equal(t, fallbackReply, reply)
	// The learner message is kept; no assistant turn is recorded.
	require.Len(t, sessions.appended, 1)
	assert.Equal(t, "user", sessions.appended[0].Role)
}

func TestHandleFreeformLogsSpanishErrors(t *testing.T) {
	sessions := &fakeSessionStore{}
	gen := &fakeGenerator{reply: "Respuesta.", quickReply: `Error: "yo es" should be "yo soy".`}
	e := newTestEngine(sessions, gen)

	_, err := e.HandleFreeform(context.Background(), testUser(), "yo es feliz", true)
	require.NoError(t, err)
	require.Len(t, sessions.errors, 1)
	assert.Equal(t, "yo es feliz", sessions.errors[0].UserSaid)
}

func TestHandleFreeformSkipsErrorCheckForEnglish(t *testing.T) {
	sessions := &fakeSessionStore{}
	gen := &fakeGenerator{reply: "Let's try in Spanish!", quickReply: "error somewhere"}
	e := newTestEngine(sessions, gen)

	_, err := e.HandleFreeform(context.Background(), testUser(), "how do I say hello?", false)
	require.NoError(t, err)
	assert.Empty(t, sessions.errors)
	assert.Empty(t, gen.quickPrompts)
}

func TestDueVocabAppearsInSystemPrompt(t *testing.T) {
	sessions := &fakeSessionStore{}
	gen := &fakeGenerator{reply: "ok"}
	e := New(sessions,
		&fakeProgressStore{due: []models.UserVocab{{VocabID: "v1"}, {VocabID: "v2"}}},
		&fakeVocabStore{items: map[string]*models.VocabItem{
			"v1": {ID: "v1", Spanish: "gracias"},
			"v2": {ID: "v2", Spanish: "adiós"},
		}},
		gen)
	e.now = time.Now

	_, err := e.HandleFreeform(context.Background(), testUser(), "hola", false)
	require.NoError(t, err)
	assert.Contains(t, gen.systemPrompt, "gracias")
	assert.Contains(t, gen.systemPrompt, "adiós")
}

func TestGenerateLessonFeedbackFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream down")}
	e := newTestEngine(&fakeSessionStore{}, gen)

	correct := e.GenerateLessonFeedback(context.Background(), testUser(), "hola", "hola", true)
	assert.Contains(t, correct, "Muy bien")

	wrong := e.GenerateLessonFeedback(context.Background(), testUser(), "adios", "hola", false)
	assert.Contains(t, wrong, "Good try")
}

func TestFormatForSMSTruncatesAtSentenceBoundary(t *testing.T) {
	short := "Hola. ¿Qué tal?"
	assert.Equal(t, short, FormatForSMS(short))

	sentence := strings.Repeat("a", 1000) + ". " + strings.Repeat("b", 1000)
	got := FormatForSMS(sentence)
	assert.Equal(t, strings.Repeat("a", 1000)+".", got)

	unbroken := strings.Repeat("c", 2000)
	got = FormatForSMS(unbroken)
	assert.Len(t, got, maxSMSLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
