// Package router dispatches classified inbound messages to the
// feature that owns them. All processing for one learner is
// serialized through a per-learner lock.
package router

import (
	"context"
	"log"
	"math/rand"
	"sync"

	"github.com/example/holabot/internal/intent"
	"github.com/example/holabot/pkg/models"
)

var correctionAcks = []string{
	"Great! Let's keep practicing. 💪",
	"Awesome! You're doing great.",
	"Perfect! Ready for the next one?",
	"¡Muy bien! Let's continue.",
}

type userStore interface {
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, phone string) (*models.User, error)
	IncrementMessageCount(ctx context.Context, id string, sent bool) error
}

type onboarder interface {
	ProcessStep(ctx context.Context, user *models.User, message string) (string, error)
}

type commander interface {
	Handle(ctx context.Context, user *models.User, command intent.Command, args string) (string, error)
}

type converser interface {
	HandleFreeform(ctx context.Context, user *models.User, message string, spanish bool) (string, error)
}

type lessonResponder interface {
	HandleLessonResponse(ctx context.Context, user *models.User, message string) (string, bool, error)
}

// Router wires classification to the handlers.
type Router struct {
	users        userStore
	onboarding   onboarder
	commands     commander
	conversation converser
	lessons      lessonResponder

	rngMu sync.Mutex
	rng   *rand.Rand

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New builds a router. The random source picks correction
// acknowledgements; tests supply a seeded one.
func New(users userStore, ob onboarder, cmds commander, conv converser, lessons lessonResponder, rng *rand.Rand) *Router {
	return &Router{
		users:        users,
		onboarding:   ob,
		commands:     cmds,
		conversation: conv,
		lessons:      lessons,
		rng:          rng,
		locks:        map[string]*sync.Mutex{},
	}
}

// Route processes one inbound message end to end and returns the
// reply to deliver. An empty reply means nothing should be sent.
func (r *Router) Route(ctx context.Context, phoneNumber, message string) (string, error) {
	unlock := r.lockSender(phoneNumber)
	defer unlock()

	user, err := r.users.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return "", err
	}
	if user == nil {
		user, err = r.users.Create(ctx, phoneNumber)
		if err != nil {
			return "", err
		}
		log.Printf("Created new user: %s", user.ID)
	}

	if err := r.users.IncrementMessageCount(ctx, user.ID, false); err != nil {
		log.Printf("Failed to count inbound message for %s: %v", user.ID, err)
	} else {
		user.TotalMessagesReceived++
	}

	classified := intent.Classify(message, user)
	log.Printf("Intent: %s (confidence: %.2f)", classified.Type, classified.Confidence)

	switch classified.Type {
	case intent.TypeOnboardingResponse:
		return r.onboarding.ProcessStep(ctx, user, message)

	case intent.TypeCommand:
		return r.commands.Handle(ctx, user, classified.Command, classified.Args)

	case intent.TypeFreeformSpanish:
		return r.conversation.HandleFreeform(ctx, user, message, true)

	case intent.TypeFreeformEnglish:
		return r.conversation.HandleFreeform(ctx, user, message, false)

	case intent.TypeConfirmation:
		return r.handleConfirmation(ctx, user, message)

	case intent.TypeCorrectionAcceptance:
		return r.pickAck(), nil

	default:
		return r.conversation.HandleFreeform(ctx, user, message, false)
	}
}

// handleConfirmation re-routes affirmatives: learners mid-onboarding
// continue the flow, everyone else is treated as answering the current
// lesson, falling back to conversation with no lesson pending.
func (r *Router) handleConfirmation(ctx context.Context, user *models.User, message string) (string, error) {
	if !user.OnboardingCompleted {
		return r.onboarding.ProcessStep(ctx, user, message)
	}

	reply, handled, err := r.lessons.HandleLessonResponse(ctx, user, message)
	if err != nil {
		return "", err
	}
	if handled {
		return reply, nil
	}
	return r.conversation.HandleFreeform(ctx, user, message, false)
}

func (r *Router) pickAck() string {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return correctionAcks[r.rng.Intn(len(correctionAcks))]
}

// lockSender serializes processing per sender so concurrent messages
// from one learner cannot interleave their read-then-write sequences.
func (r *Router) lockSender(phoneNumber string) func() {
	r.locksMu.Lock()
	mu, ok := r.locks[phoneNumber]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[phoneNumber] = mu
	}
	r.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
