package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/holabot/pkg/models"
)

func onboardedUser() *models.User {
	return &models.User{ID: "u1", OnboardingCompleted: true, OnboardingStep: 8}
}

func TestClassifyCommands(t *testing.T) {
	tests := []struct {
		text    string
		command Command
		args    string
	}{
		{"/progress", CommandProgress, ""},
		{"/HELP", CommandHelp, ""},
		{"  /settings  ", CommandSettings, ""},
		{"/level b1", CommandLevel, "b1"},
		{"practice ordering food", CommandPractice, "ordering food"},
	}
	for _, tt := range tests {
		got := Classify(tt.text, onboardedUser())
		assert.Equal(t, TypeCommand, got.Type, tt.text)
		assert.Equal(t, tt.command, got.Command, tt.text)
		assert.Equal(t, tt.args, got.Args, tt.text)
	}
}

func TestCommandsWinOverOnboarding(t *testing.T) {
	user := &models.User{ID: "u1", OnboardingStep: 2}
	got := Classify("/help", user)
	assert.Equal(t, TypeCommand, got.Type)
	assert.Equal(t, CommandHelp, got.Command)
}

func TestOnboardingForcesCategory(t *testing.T) {
	user := &models.User{ID: "u1", OnboardingStep: 3}
	for _, text := range []string{"yes", "hola", "anything at all", "3"} {
		got := Classify(text, user)
		assert.Equal(t, TypeOnboardingResponse, got.Type, text)
	}
}

func TestClassifyConfirmation(t *testing.T) {
	for _, text := range []string{"yes", "Sí", "ok", "claro", "3", "vale"} {
		got := Classify(text, onboardedUser())
		assert.Equal(t, TypeConfirmation, got.Type, text)
	}

	// Numbers outside the 1-5 choice range are not confirmations.
	got := Classify("6", onboardedUser())
	assert.NotEqual(t, TypeConfirmation, got.Type)
}

func TestClassifyCorrectionAcceptance(t *testing.T) {
	for _, text := range []string{"oh", "got it", "gracias", "makes sense", "thank you"} {
		got := Classify(text, onboardedUser())
		assert.Equal(t, TypeCorrectionAcceptance, got.Type, text)
	}
}

func TestConfirmationWinsOverCorrectionAcceptance(t *testing.T) {
	// "okay" matches both pattern sets; the cascade order decides.
	got := Classify("okay", onboardedUser())
	assert.Equal(t, TypeConfirmation, got.Type)
}

func TestClassifySpanish(t *testing.T) {
	for _, text := range []string{
		"¿Dónde está el baño?",
		"quiero aprender más",
		"voy a la tienda",
		"the word es means is", // function word match
	} {
		got := Classify(text, onboardedUser())
		assert.Equal(t, TypeFreeformSpanish, got.Type, text)
	}
}

func TestClassifyEnglishDefault(t *testing.T) {
	for _, text := range []string{
		"how do I say hello?",
		"what time is my next session",
	} {
		got := Classify(text, onboardedUser())
		assert.Equal(t, TypeFreeformEnglish, got.Type, text)
	}
}

func TestClassifyNilUser(t *testing.T) {
	got := Classify("hello there", nil)
	assert.Equal(t, TypeFreeformEnglish, got.Type)
}
