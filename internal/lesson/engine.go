// Package lesson selects, delivers, and evaluates vocabulary lessons.
package lesson

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/holabot/internal/progression"
	"github.com/example/holabot/internal/spaced_repetition"
	"github.com/example/holabot/pkg/models"
)

// Type distinguishes a first introduction from a spaced-repetition
// review.
type Type string

const (
	TypeNewVocab Type = "new_vocab"
	TypeReview   Type = "review"
)

// Content is one deliverable lesson.
type Content struct {
	Type Type
	Item *models.VocabItem
}

// reviewThreshold is how many items must be due before reviews take
// priority over new vocabulary.
const reviewThreshold = 3

type vocabStore interface {
	GetByID(ctx context.Context, id string) (*models.VocabItem, error)
	ListByLevelAndUnit(ctx context.Context, level models.Level, unit int) ([]models.VocabItem, error)
	CountByLevelAndUnit(ctx context.Context, level models.Level, unit int) (int, error)
}

type progressStore interface {
	GetByUserAndVocab(ctx context.Context, userID, vocabID string) (*models.UserVocab, error)
	GetOrCreate(ctx context.Context, userID, vocabID string, unit, lesson int) (*models.UserVocab, error)
	DueForReview(ctx context.Context, userID string, limit int, now time.Time) ([]models.UserVocab, error)
	ApplyReview(ctx context.Context, uv *models.UserVocab) error
	CountInUnit(ctx context.Context, userID string, level models.Level, unit int) (int, error)
}

type userStore interface {
	AdvanceUnit(ctx context.Context, id string) error
}

type activityStore interface {
	AddXP(ctx context.Context, userID, date string, xp int) error
	IncrementLessons(ctx context.Context, userID, date string) error
	AddVocabReviewed(ctx context.Context, userID, date, vocabID string) error
	AddVocabMastered(ctx context.Context, userID, date, vocabID string) error
}

type rewarder interface {
	AwardXP(ctx context.Context, user *models.User, amount int, reason string) (*progression.LevelUp, error)
}

type feedbackGenerator interface {
	GenerateLessonFeedback(ctx context.Context, user *models.User, response, vocabWord string, correct bool) string
}

// Engine owns lesson selection and response evaluation.
type Engine struct {
	vocab    vocabStore
	progress progressStore
	users    userStore
	activity activityStore
	xp       rewarder
	feedback feedbackGenerator

	now func() time.Time
}

// New builds a lesson engine.
func New(vocab vocabStore, progress progressStore, users userStore, activity activityStore, xp rewarder, feedback feedbackGenerator) *Engine {
	return &Engine{
		vocab:    vocab,
		progress: progress,
		users:    users,
		activity: activity,
		xp:       xp,
		feedback: feedback,
		now:      time.Now,
	}
}

// NextLesson picks the learner's next lesson. Reviews win when at
// least three items are due; otherwise the first unintroduced item of
// the current unit is selected. With nothing left in the unit the unit
// cursor advances (with a completion bonus) and no lesson is returned
// for this cycle.
func (e *Engine) NextLesson(ctx context.Context, user *models.User) (*Content, error) {
	due, err := e.progress.DueForReview(ctx, user.ID, reviewThreshold, e.now())
	if err != nil {
		return nil, err
	}
	if len(due) >= reviewThreshold {
		item, err := e.vocab.GetByID(ctx, due[0].VocabID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return &Content{Type: TypeReview, Item: item}, nil
		}
	}

	item, err := e.nextUnseenVocab(ctx, user)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return &Content{Type: TypeNewVocab, Item: item}, nil
	}

	if err := e.checkAndAdvanceUnit(ctx, user); err != nil {
		return nil, err
	}
	return nil, nil
}

// Deliver formats a lesson for sending. Introducing new vocabulary
// also creates the learner's progress row so the item becomes
// reviewable.
func (e *Engine) Deliver(ctx context.Context, user *models.User, lesson *Content) (string, error) {
	if lesson.Type == TypeReview {
		return formatReviewLesson(lesson.Item), nil
	}

	if _, err := e.progress.GetOrCreate(ctx, user.ID, lesson.Item.ID, user.CurrentUnit, user.CurrentLesson); err != nil {
		return "", fmt.Errorf("failed to create progress row: %w", err)
	}
	return formatNewVocabLesson(lesson.Item), nil
}

// HandleLessonResponse evaluates an inbound message against the
// learner's most urgent due item. The second return is false when
// there is no active lesson to evaluate against, in which case the
// caller should treat the message as freeform conversation.
func (e *Engine) HandleLessonResponse(ctx context.Context, user *models.User, message string) (string, bool, error) {
	due, err := e.progress.DueForReview(ctx, user.ID, 1, e.now())
	if err != nil {
		return "", false, err
	}
	if len(due) == 0 {
		return "", false, nil
	}

	item, err := e.vocab.GetByID(ctx, due[0].VocabID)
	if err != nil {
		return "", false, err
	}
	if item == nil {
		return "", false, nil
	}

	reply, err := e.Evaluate(ctx, user, message, item, &due[0])
	if err != nil {
		return "", false, err
	}
	return reply, true, nil
}

// Evaluate grades a response against the target item, records the
// review, awards experience, and returns generated feedback with an
// experience note appended.
func (e *Engine) Evaluate(ctx context.Context, user *models.User, response string, item *models.VocabItem, uv *models.UserVocab) (string, error) {
	usedWord := strings.Contains(strings.ToLower(response), strings.ToLower(item.Spanish))

	quality := spaced_repetition.QualityWithHelp
	xp := progression.XPLessonAttempt
	if usedWord {
		quality = spaced_repetition.QualityPerfect
		xp = progression.XPLessonCorrectFirst
	}

	now := e.now()
	wasMastered := uv.Status == models.StatusMastered
	spaced_repetition.Review(uv, quality, now)
	if err := e.progress.ApplyReview(ctx, uv); err != nil {
		return "", fmt.Errorf("failed to record review: %w", err)
	}

	today := now.Format("2006-01-02")
	if _, err := e.xp.AwardXP(ctx, user, xp, fmt.Sprintf("Lesson response for %q", item.Spanish)); err != nil {
		return "", err
	}
	if err := e.activity.AddXP(ctx, user.ID, today, xp); err != nil {
		log.Printf("Failed to record activity XP for user %s: %v", user.ID, err)
	}
	if err := e.activity.AddVocabReviewed(ctx, user.ID, today, item.ID); err != nil {
		log.Printf("Failed to record reviewed vocab for user %s: %v", user.ID, err)
	}
	if !wasMastered && uv.Status == models.StatusMastered {
		if err := e.activity.AddVocabMastered(ctx, user.ID, today, item.ID); err != nil {
			log.Printf("Failed to record mastered vocab for user %s: %v", user.ID, err)
		}
	}

	feedback := e.feedback.GenerateLessonFeedback(ctx, user, response, item.Spanish, usedWord)

	xpNote := fmt.Sprintf("\n\n+%d XP", xp)
	if !usedWord {
		xpNote = fmt.Sprintf("\n\nKeep practicing! +%d XP", xp)
	}
	return feedback + xpNote, nil
}

// nextUnseenVocab walks the unit in sequence order and returns the
// first item without a progress row.
func (e *Engine) nextUnseenVocab(ctx context.Context, user *models.User) (*models.VocabItem, error) {
	items, err := e.vocab.ListByLevelAndUnit(ctx, user.CurrentLevel, user.CurrentUnit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		uv, err := e.progress.GetByUserAndVocab(ctx, user.ID, items[i].ID)
		if err != nil {
			return nil, err
		}
		if uv == nil {
			return &items[i], nil
		}
	}
	return nil, nil
}

// checkAndAdvanceUnit moves the unit cursor forward once every item in
// the current unit has a progress row, granting the completion bonus.
func (e *Engine) checkAndAdvanceUnit(ctx context.Context, user *models.User) error {
	total, err := e.vocab.CountByLevelAndUnit(ctx, user.CurrentLevel, user.CurrentUnit)
	if err != nil {
		return err
	}
	learned, err := e.progress.CountInUnit(ctx, user.ID, user.CurrentLevel, user.CurrentUnit)
	if err != nil {
		return err
	}
	if learned < total {
		return nil
	}

	if err := e.users.AdvanceUnit(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to advance unit: %w", err)
	}
	user.CurrentUnit++
	user.CurrentLesson = 1
	log.Printf("User %s completed unit %d", user.ID, user.CurrentUnit-1)

	_, err = e.xp.AwardXP(ctx, user, progression.XPUnitComplete, fmt.Sprintf("Completed unit %d", user.CurrentUnit-1))
	return err
}

func formatNewVocabLesson(vocab *models.VocabItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today's word: %s", strings.ToUpper(vocab.Spanish))
	if vocab.Phonetic != "" {
		fmt.Fprintf(&b, " (%s)", vocab.Phonetic)
	}
	fmt.Fprintf(&b, "\nIt means: %s", vocab.English)

	if vocab.ExampleSentenceES != "" && vocab.ExampleSentenceEN != "" {
		fmt.Fprintf(&b, "\n\nExample: %s\n(%s)", vocab.ExampleSentenceES, vocab.ExampleSentenceEN)
	}

	fmt.Fprintf(&b, "\n\nTry using %q in a sentence!", vocab.Spanish)
	return b.String()
}

func formatReviewLesson(vocab *models.VocabItem) string {
	return fmt.Sprintf("Quick review! 🔄\n\nDo you remember what %q means?\n\nTry using it in a sentence!", vocab.Spanish)
}
