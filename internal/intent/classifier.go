// Package intent classifies inbound messages into routing decisions.
// Classification is a pure ordered cascade; the first matching rule
// wins and confidence is descriptive metadata only.
package intent

import (
	"regexp"
	"strings"

	"github.com/example/holabot/pkg/models"
)

// Type is the routing category assigned to a message.
type Type string

const (
	TypeCommand              Type = "command"
	TypeOnboardingResponse   Type = "onboarding_response"
	TypeConfirmation         Type = "confirmation"
	TypeCorrectionAcceptance Type = "correction_acceptance"
	TypeFreeformSpanish      Type = "freeform_spanish"
	TypeFreeformEnglish      Type = "freeform_english"
)

// Command is a recognized slash command.
type Command string

const (
	CommandSettings  Command = "settings"
	CommandProgress  Command = "progress"
	CommandWords     Command = "words"
	CommandReview    Command = "review"
	CommandScenarios Command = "scenarios"
	CommandHelp      Command = "help"
	CommandPause     Command = "pause"
	CommandResume    Command = "resume"
	CommandLevel     Command = "level"
	CommandPractice  Command = "practice"
)

var commands = map[string]Command{
	"/settings":  CommandSettings,
	"/progress":  CommandProgress,
	"/words":     CommandWords,
	"/review":    CommandReview,
	"/scenarios": CommandScenarios,
	"/help":      CommandHelp,
	"/pause":     CommandPause,
	"/resume":    CommandResume,
	"/level":     CommandLevel,
}

var confirmationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(yes|si|sí|yeah|yep|ok|okay|sure|claro|vale|correct|right)$`),
	regexp.MustCompile(`^[1-5]$`),
}

var correctionAcceptancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(oh|ah|i see|got it|thanks|gracias|understood|okay)$`),
	regexp.MustCompile(`(?i)^(makes sense|that helps|thank you)$`),
}

var spanishIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[áéíóúüñ¿¡]`),
	regexp.MustCompile(`(?i)^(hola|gracias|bueno|bien|mal|quiero|tengo|estoy|soy|voy|como|donde|cuando|porque|que)\b`),
	regexp.MustCompile(`(?i)\b(es|el|la|los|las|un|una|de|en|con|por|para)\b`),
}

// Classified is the result of classifying one message.
type Classified struct {
	Type       Type
	Confidence float64
	Command    Command
	Args       string
}

// Classify assigns a routing category to a trimmed message. The cascade
// checks commands before learner state so a learner stuck mid-onboarding
// can still reach /help.
func Classify(message string, user *models.User) Classified {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	if cmd, args, ok := parseCommand(lower); ok {
		return Classified{Type: TypeCommand, Confidence: 1.0, Command: cmd, Args: args}
	}

	if strings.HasPrefix(lower, "practice ") {
		return Classified{
			Type:       TypeCommand,
			Confidence: 0.95,
			Command:    CommandPractice,
			Args:       strings.TrimSpace(trimmed[len("practice "):]),
		}
	}

	if user != nil && !user.OnboardingCompleted {
		return Classified{Type: TypeOnboardingResponse, Confidence: 0.95}
	}

	if matchesAny(confirmationPatterns, lower) {
		return Classified{Type: TypeConfirmation, Confidence: 0.9}
	}

	if matchesAny(correctionAcceptancePatterns, lower) {
		return Classified{Type: TypeCorrectionAcceptance, Confidence: 0.85}
	}

	if matchesAny(spanishIndicators, trimmed) {
		return Classified{Type: TypeFreeformSpanish, Confidence: 0.8}
	}

	return Classified{Type: TypeFreeformEnglish, Confidence: 0.7}
}

func parseCommand(lower string) (Command, string, bool) {
	parts := strings.Fields(lower)
	if len(parts) == 0 {
		return "", "", false
	}
	cmd, ok := commands[parts[0]]
	if !ok {
		return "", "", false
	}
	return cmd, strings.Join(parts[1:], " "), true
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
