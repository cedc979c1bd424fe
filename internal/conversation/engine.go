// Package conversation runs freeform tutoring exchanges through the
// generation service, persisting the dialogue into sessions.
package conversation

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/example/holabot/internal/ai"
	"github.com/example/holabot/pkg/models"
)

// maxSMSLength is the practical ceiling for a concatenated SMS.
const maxSMSLength = 1600

const fallbackReply = "Lo siento, I'm having trouble responding right now. Try again in a moment! 🙏"

type sessionStore interface {
	ActiveForUser(ctx context.Context, userID string) (*models.ConversationSession, error)
	Create(ctx context.Context, userID, sessionType string) (*models.ConversationSession, error)
	AppendMessage(ctx context.Context, id, role, content string) error
	AppendError(ctx context.Context, id string, errMade models.ErrorMade) error
	RecentMessages(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error)
}

type progressStore interface {
	DueForReview(ctx context.Context, userID string, limit int, now time.Time) ([]models.UserVocab, error)
}

type vocabStore interface {
	GetByID(ctx context.Context, id string) (*models.VocabItem, error)
}

type generator interface {
	CreateMessage(ctx context.Context, systemPrompt string, messages []ai.Message) (string, error)
	QuickResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Engine drives freeform conversation and lesson feedback generation.
type Engine struct {
	sessions sessionStore
	progress progressStore
	vocab    vocabStore
	gen      generator

	now func() time.Time
}

// New builds a conversation engine.
func New(sessions sessionStore, progress progressStore, vocab vocabStore, gen generator) *Engine {
	return &Engine{sessions: sessions, progress: progress, vocab: vocab, gen: gen, now: time.Now}
}

// HandleFreeform processes one freeform message: append it to the
// active session, generate a tutor reply from recent history, and log
// language errors when the learner wrote Spanish. A generation failure
// yields a fixed apology rather than an error to the sender.
func (e *Engine) HandleFreeform(ctx context.Context, user *models.User, message string, spanish bool) (string, error) {
	session, err := e.sessions.ActiveForUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if session == nil {
		session, err = e.sessions.Create(ctx, user.ID, models.SessionFreeform)
		if err != nil {
			return "", err
		}
	}

	if err := e.sessions.AppendMessage(ctx, session.ID, "user", message); err != nil {
		return "", err
	}

	history, err := e.sessions.RecentMessages(ctx, user.ID, 8)
	if err != nil {
		return "", err
	}
	messages := make([]ai.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	if len(messages) == 0 || messages[len(messages)-1].Content != message {
		messages = append(messages, ai.Message{Role: "user", Content: message})
	}

	systemPrompt := ai.BuildSystemPrompt(user, e.dueVocabWords(ctx, user.ID))
	reply, err := e.gen.CreateMessage(ctx, systemPrompt, messages)
	if err != nil {
		log.Printf("Generation failed for user %s: %v", user.ID, err)
		return fallbackReply, nil
	}

	if spanish {
		e.checkAndLogErrors(ctx, session.ID, message, user.CurrentLevel)
	}

	if err := e.sessions.AppendMessage(ctx, session.ID, "assistant", reply); err != nil {
		return "", err
	}

	return FormatForSMS(reply), nil
}

// GenerateLessonFeedback produces feedback on a lesson response. It
// falls back to a canned line when generation fails.
func (e *Engine) GenerateLessonFeedback(ctx context.Context, user *models.User, response, vocabWord string, correct bool) string {
	systemPrompt := ai.BuildSystemPrompt(user, nil)
	prompt := ai.BuildLessonFeedbackPrompt(vocabWord, response, correct)

	feedback, err := e.gen.QuickResponse(ctx, systemPrompt, prompt)
	if err != nil {
		log.Printf("Lesson feedback generation failed for user %s: %v", user.ID, err)
		if correct {
			return "¡Muy bien! You used it perfectly."
		}
		return "Good try! Take another look at the word and give it one more go."
	}
	return FormatForSMS(feedback)
}

// dueVocabWords resolves the Spanish text of the items due for review,
// for inclusion in the system prompt. Failures degrade to no context.
func (e *Engine) dueVocabWords(ctx context.Context, userID string) []string {
	due, err := e.progress.DueForReview(ctx, userID, 5, e.now())
	if err != nil {
		log.Printf("Failed to load due vocab for prompt context: %v", err)
		return nil
	}

	var words []string
	for _, uv := range due {
		item, err := e.vocab.GetByID(ctx, uv.VocabID)
		if err != nil || item == nil {
			continue
		}
		words = append(words, item.Spanish)
	}
	return words
}

// checkAndLogErrors asks the generation service to analyze a Spanish
// message and records any correction into the session's error log.
// Best effort only.
func (e *Engine) checkAndLogErrors(ctx context.Context, sessionID, userText string, level models.Level) {
	analysis, err := e.gen.QuickResponse(ctx,
		"You are a Spanish language analysis tool. Identify errors briefly.",
		ai.BuildErrorCheckPrompt(userText, level))
	if err != nil {
		log.Printf("Error checking for language errors: %v", err)
		return
	}

	lower := strings.ToLower(analysis)
	if strings.Contains(lower, "error") ||
		strings.Contains(lower, "correction") ||
		strings.Contains(lower, "should be") {
		if err := e.sessions.AppendError(ctx, sessionID, models.ErrorMade{
			UserSaid:   userText,
			Correction: analysis,
		}); err != nil {
			log.Printf("Failed to log language error: %v", err)
		}
	}
}

// FormatForSMS truncates long replies at a sentence boundary so they
// fit a concatenated SMS.
func FormatForSMS(text string) string {
	if len(text) <= maxSMSLength {
		return text
	}

	truncated := text[:maxSMSLength]
	lastSentence := -1
	for _, sep := range []string{".", "?", "!"} {
		if i := strings.LastIndex(truncated, sep); i > lastSentence {
			lastSentence = i
		}
	}
	if lastSentence > maxSMSLength/2 {
		return truncated[:lastSentence+1]
	}
	return truncated + "..."
}
