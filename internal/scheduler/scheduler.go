// Package scheduler runs the periodic jobs: minute-by-minute lesson
// delivery and the evening streak-reminder sweep.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/holabot/internal/lesson"
	"github.com/example/holabot/internal/progression"
	"github.com/example/holabot/pkg/models"
)

// reminderHour is when the at-risk sweep runs (learner-facing evening
// nudge).
const reminderHour = 20

type userStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetUsersDueForLesson(ctx context.Context, lessonTime, today string) ([]models.User, error)
	GetUsersWithStreakAtRisk(ctx context.Context, yesterday string) ([]models.User, error)
}

type lessonEngine interface {
	NextLesson(ctx context.Context, user *models.User) (*lesson.Content, error)
	Deliver(ctx context.Context, user *models.User, content *lesson.Content) (string, error)
}

type streakUpdater interface {
	UpdateStreak(ctx context.Context, user *models.User) (progression.StreakResult, error)
}

type messageCarrier interface {
	SendMessage(ctx context.Context, toNumber, content string) (string, error)
}

// Scheduler owns the cron jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	users     userStore
	lessons   lessonEngine
	streaks   streakUpdater
	carrier   messageCarrier

	now func() time.Time
}

// New builds the scheduler. Jobs run against UTC wall clock.
func New(users userStore, lessons lessonEngine, streaks streakUpdater, carrier messageCarrier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		users:     users,
		lessons:   lessons,
		streaks:   streaks,
		carrier:   carrier,
		now:       time.Now,
	}
}

// Start registers and launches the jobs. The context cancels delivery
// between learners on shutdown; an in-flight delivery runs to
// completion.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.scheduler.Every(1).Minute().Do(func() { s.DeliverDueLessons(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule lesson delivery: %w", err)
	}
	if _, err := s.scheduler.Every(1).Day().At(fmt.Sprintf("%02d:00", reminderHour)).Do(func() { s.SendStreakReminders(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule streak reminders: %w", err)
	}

	s.scheduler.StartAsync()
	log.Println("Scheduler started")
	return nil
}

// Stop halts the jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	log.Println("Scheduler stopped")
}

// DeliverDueLessons delivers a lesson to every learner whose configured
// time matches the current minute and who has not been active today.
// Per-learner failures are logged and do not abort the batch.
func (s *Scheduler) DeliverDueLessons(ctx context.Context) {
	now := s.now()
	currentTime := fmt.Sprintf("%02d:%02d:00", now.Hour(), now.Minute())
	today := now.Format("2006-01-02")

	users, err := s.users.GetUsersDueForLesson(ctx, currentTime, today)
	if err != nil {
		log.Printf("Error loading learners due for lessons: %v", err)
		return
	}

	for i := range users {
		select {
		case <-ctx.Done():
			log.Println("Lesson delivery interrupted by shutdown")
			return
		default:
		}

		if err := s.deliverLessonToUser(ctx, users[i].ID); err != nil {
			log.Printf("Failed to deliver lesson to %s: %v", users[i].PhoneNumber, err)
		}
	}
}

func (s *Scheduler) deliverLessonToUser(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	content, err := s.lessons.NextLesson(ctx, user)
	if err != nil {
		return err
	}
	if content == nil {
		log.Printf("No lesson available for user %s", user.ID)
		return nil
	}

	message, err := s.lessons.Deliver(ctx, user, content)
	if err != nil {
		return err
	}
	if _, err := s.carrier.SendMessage(ctx, user.PhoneNumber, message); err != nil {
		return err
	}

	result, err := s.streaks.UpdateStreak(ctx, user)
	if err != nil {
		return err
	}
	if result.Milestone != "" {
		if _, err := s.carrier.SendMessage(ctx, user.PhoneNumber, result.Milestone); err != nil {
			log.Printf("Failed to send milestone to %s: %v", user.PhoneNumber, err)
		}
	}

	log.Printf("Delivered lesson to %s", user.PhoneNumber)
	return nil
}

// SendStreakReminders nudges learners whose streak would break at
// midnight. Learners who asked for light accountability are left
// alone.
func (s *Scheduler) SendStreakReminders(ctx context.Context) {
	yesterday := s.now().AddDate(0, 0, -1).Format("2006-01-02")

	users, err := s.users.GetUsersWithStreakAtRisk(ctx, yesterday)
	if err != nil {
		log.Printf("Error loading at-risk learners: %v", err)
		return
	}

	for i := range users {
		select {
		case <-ctx.Done():
			return
		default:
		}

		user := &users[i]
		if user.AccountabilityLevel == models.AccountabilityLight {
			continue
		}

		message := fmt.Sprintf("🔥 Your %d day streak is at risk! A quick practice session before midnight keeps it alive. ¿Practicamos?", user.StreakDays)
		if _, err := s.carrier.SendMessage(ctx, user.PhoneNumber, message); err != nil {
			log.Printf("Failed to send streak reminder to %s: %v", user.PhoneNumber, err)
		}
	}
}
