// Package onboarding walks a new learner through the setup
// conversation. Steps 0 through 7 run strictly forward; invalid input
// re-prompts without advancing.
package onboarding

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/example/holabot/internal/progression"
	"github.com/example/holabot/pkg/models"
)

const (
	msgWelcome = `¡Hola! 👋 I'm Hola — your Spanish tutor that lives in your texts.

I'll send you bite-sized lessons, chat with you in Spanish, and help you actually remember what you learn.

No app needed. Just text back.

Ready to start? (Reply 'yes' or 'sí'!)`

	msgLevel = `Awesome! First, what's your Spanish level?

1️⃣ Complete beginner (starting from zero)
2️⃣ Know some basics (greetings, simple words)
3️⃣ Can hold simple conversations
4️⃣ Intermediate (comfortable but want to improve)

Reply with the number.`

	msgGoals = `Why do you want to learn Spanish?

1️⃣ Travel
2️⃣ Work or career
3️⃣ Connect with family/friends
4️⃣ Personal enrichment
5️⃣ All of the above

This helps me personalize your lessons.`

	msgDialect = `Spanish varies by region. Which would you prefer?

1️⃣ Latin American Spanish (Mexico, Central/South America)
2️⃣ Castilian Spanish (Spain)

Both are great — this just affects some vocabulary and examples.`

	msgFrequency = `How many lessons per day?

1️⃣ 1 lesson (light, ~2 min/day)
2️⃣ 2 lessons (recommended, ~5 min/day)
3️⃣ 3 lessons (committed, ~8 min/day)

You can always change this later.`

	msgTime = `When should I send your first lesson?

Just reply with a time like '9am' or '8:30'.

I'll send lessons around this time each day.`

	msgAccountability = `One more thing — how much should I nudge you?

1️⃣ Light — Just send lessons, I'll respond when I can
2️⃣ Medium — Remind me if I don't respond to lessons
3️⃣ High — Daily check-ins and encouragement

I recommend Medium to build the habit.`

	msgFirstLesson = `¡Perfecto! You're all set. 🎉

Here's how it works:
• I'll send lessons → You respond
• Text me anytime to practice
• Text /progress to see your stats
• Text /settings to adjust preferences

Let's start with your first word...

Today's word: HOLA (OH-lah)
It means: Hello / Hi

You already know this one! How would you greet a friend in Spanish?`
)

type userStore interface {
	Update(ctx context.Context, user *models.User) error
	IncrementOnboardingStep(ctx context.Context, id string) error
	CompleteOnboarding(ctx context.Context, id string) error
}

type rewarder interface {
	AwardXP(ctx context.Context, user *models.User, amount int, reason string) (*progression.LevelUp, error)
}

// step handles one onboarding state: validate the input, persist the
// captured preference, and return the prompt for the next state. On
// invalid input it returns a correction prompt and advance=false.
type step interface {
	Handle(ctx context.Context, m *Machine, user *models.User, input string) (reply string, advance bool, err error)
}

// Machine drives the onboarding conversation.
type Machine struct {
	users userStore
	xp    rewarder

	steps [8]step
}

// New builds the machine over the user store and the experience
// accountant used for the completion bonus.
func New(users userStore, xp rewarder) *Machine {
	return &Machine{
		users: users,
		xp:    xp,
		steps: [8]step{
			welcomeStep{},
			levelStep{},
			goalsStep{},
			dialectStep{},
			frequencyStep{},
			timeStep{},
			accountabilityStep{},
			firstLessonStep{},
		},
	}
}

// ProcessStep feeds one inbound message to the learner's current step
// and returns the reply to send.
func (m *Machine) ProcessStep(ctx context.Context, user *models.User, message string) (string, error) {
	if user.OnboardingCompleted || user.OnboardingStep < 0 || user.OnboardingStep >= len(m.steps) {
		return "You're all set! Text me anything to practice Spanish, or /help for commands.", nil
	}

	reply, advance, err := m.steps[user.OnboardingStep].Handle(ctx, m, user, message)
	if err != nil {
		return "", err
	}
	if advance {
		if err := m.users.IncrementOnboardingStep(ctx, user.ID); err != nil {
			return "", fmt.Errorf("failed to advance onboarding step: %w", err)
		}
		user.OnboardingStep++
	}
	return reply, nil
}

type welcomeStep struct{}

func (welcomeStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(input))
	affirmatives := []string{"yes", "si", "sí", "yeah", "yep", "ok", "okay", "sure", "y"}
	for _, a := range affirmatives {
		if lower == a || strings.HasPrefix(lower, a) {
			return msgLevel, true, nil
		}
	}
	if user.TotalMessagesReceived <= 1 {
		// Very first contact: greet rather than correct.
		return msgWelcome, false, nil
	}
	return "I didn't catch that. Ready to start learning Spanish? Just reply 'yes' or 'sí'!", false, nil
}

type levelStep struct{}

func (levelStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	choice := strings.TrimSpace(input)
	levels := map[string]models.Level{
		"1": models.LevelA0,
		"2": models.LevelA1,
		"3": models.LevelA2,
		"4": models.LevelB1,
	}
	level, ok := levels[choice]
	if !ok {
		return "Please reply with 1, 2, 3, or 4 to select your level.", false, nil
	}

	user.CurrentLevel = level
	if err := m.users.Update(ctx, user); err != nil {
		return "", false, err
	}

	responses := map[string]string{
		"1": "Starting from scratch — that's exciting! We'll take it nice and slow.",
		"2": "Great — you've got some basics! We'll build from there.",
		"3": "Nice! You can already have conversations. Let's make them even better.",
		"4": "Awesome! You're already comfortable. Let's polish your skills.",
	}
	return responses[choice] + "\n\n" + msgGoals, true, nil
}

type goalsStep struct{}

func (goalsStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	choice := strings.TrimSpace(input)
	goals := map[string]models.StringList{
		"1": {"travel"},
		"2": {"work"},
		"3": {"family"},
		"4": {"personal"},
		"5": {"travel", "work", "family", "personal"},
	}
	selected, ok := goals[choice]
	if !ok {
		return "Please reply with 1, 2, 3, 4, or 5 to select your goal.", false, nil
	}

	user.Goals = selected
	if err := m.users.Update(ctx, user); err != nil {
		return "", false, err
	}

	responses := map[string]string{
		"1": "Travel is one of the best reasons! I'll include lots of practical scenarios.",
		"2": "Career boost! I'll focus on professional vocabulary and formal speech.",
		"3": "Connecting with loved ones — that's beautiful. We'll make it conversational.",
		"4": "Personal growth — love it! We'll make learning enjoyable.",
		"5": "You want it all! I'll give you a well-rounded experience.",
	}
	return responses[choice] + "\n\n" + msgDialect, true, nil
}

type dialectStep struct{}

func (dialectStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	choice := strings.TrimSpace(input)
	var dialect string
	var response string
	switch choice {
	case "1":
		dialect = models.DialectLatam
		response = "¡Perfecto! Latin American Spanish it is."
	case "2":
		dialect = models.DialectCastilian
		response = "¡Vale! Castilian Spanish it is."
	default:
		return "Please reply with 1 or 2 to select your dialect preference.", false, nil
	}

	user.DialectPreference = dialect
	if err := m.users.Update(ctx, user); err != nil {
		return "", false, err
	}
	return response + "\n\n" + msgFrequency, true, nil
}

type frequencyStep struct{}

func (frequencyStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	choice := strings.TrimSpace(input)
	count, err := strconv.Atoi(choice)
	if err != nil || count < 1 || count > 3 {
		return "Please reply with 1, 2, or 3 to select your lesson frequency.", false, nil
	}

	user.DailyLessonCount = count
	if err := m.users.Update(ctx, user); err != nil {
		return "", false, err
	}

	plural := ""
	if count > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Great choice — %d lesson%s per day.\n\n%s", count, plural, msgTime), true, nil
}

type timeStep struct{}

func (timeStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	timeStr, ok := ParseTime(input)
	if !ok {
		return "I didn't understand that time. Please reply like '9am' or '14:30'.", false, nil
	}

	user.LessonTime = timeStr
	if err := m.users.Update(ctx, user); err != nil {
		return "", false, err
	}
	return fmt.Sprintf("Got it — lessons at %s.\n\n%s", FormatTime(timeStr), msgAccountability), true, nil
}

type accountabilityStep struct{}

func (accountabilityStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	choice := strings.TrimSpace(input)
	levels := map[string]string{
		"1": models.AccountabilityLight,
		"2": models.AccountabilityMedium,
		"3": models.AccountabilityHigh,
	}
	level, ok := levels[choice]
	if !ok {
		return "Please reply with 1, 2, or 3 to select your accountability level.", false, nil
	}

	user.AccountabilityLevel = level
	if err := m.users.Update(ctx, user); err != nil {
		return "", false, err
	}
	return msgFirstLesson, true, nil
}

type firstLessonStep struct{}

func (firstLessonStep) Handle(ctx context.Context, m *Machine, user *models.User, input string) (string, bool, error) {
	lower := strings.ToLower(strings.TrimSpace(input))
	if !strings.Contains(lower, "hola") {
		return "Try greeting me in Spanish! How would you say 'hello'?", false, nil
	}

	if err := m.users.CompleteOnboarding(ctx, user.ID); err != nil {
		return "", false, err
	}
	user.OnboardingCompleted = true
	user.OnboardingStep = 8

	if _, err := m.xp.AwardXP(ctx, user, progression.XPOnboardingComplete, "Onboarding complete"); err != nil {
		return "", false, err
	}

	reply := `¡Perfecto! 🎉 You just completed your first lesson.

+15 XP earned

Tomorrow at your scheduled time, I'll send your next word. In the meantime, feel free to text me anytime to practice!`
	// The step counter was already bumped by CompleteOnboarding.
	return reply, false, nil
}

var (
	time12Pattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
	time24Pattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseTime normalizes inputs like "9am", "9:30pm", or "14:30" to an
// HH:MM:SS delivery time. The second return is false when the input is
// not a recognizable time.
func ParseTime(input string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(input))

	if m := time12Pattern.FindStringSubmatch(trimmed); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2])
		}
		if hours < 1 || hours > 12 || minutes > 59 {
			return "", false
		}
		if m[3] == "pm" && hours != 12 {
			hours += 12
		}
		if m[3] == "am" && hours == 12 {
			hours = 0
		}
		return fmt.Sprintf("%02d:%02d:00", hours, minutes), true
	}

	if m := time24Pattern.FindStringSubmatch(trimmed); m != nil {
		hours, _ := strconv.Atoi(m[1])
		minutes, _ := strconv.Atoi(m[2])
		if hours > 23 || minutes > 59 {
			return "", false
		}
		return fmt.Sprintf("%02d:%02d:00", hours, minutes), true
	}

	return "", false
}

// FormatTime renders an HH:MM:SS delivery time as "9 AM" or "9:30 AM".
func FormatTime(timeStr string) string {
	parts := strings.Split(timeStr, ":")
	hours, _ := strconv.Atoi(parts[0])
	minutes := 0
	if len(parts) > 1 {
		minutes, _ = strconv.Atoi(parts[1])
	}

	period := "AM"
	if hours >= 12 {
		period = "PM"
	}
	hour12 := hours
	switch {
	case hours == 0:
		hour12 = 12
	case hours > 12:
		hour12 = hours - 12
	}
	if minutes == 0 {
		return fmt.Sprintf("%d %s", hour12, period)
	}
	return fmt.Sprintf("%d:%02d %s", hour12, minutes, period)
}
