package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wardline/osler/internal/conversation"
	"github.com/wardline/osler/internal/profile"
	"github.com/wardline/osler/internal/provider"
)

// ErrInsufficientData is returned when a note is requested for a transcript
// with no patient turns.
var ErrInsufficientData = errors.New("insufficient patient data")

// Interview renders the follow-up-question prompt for the interviewing stage.
// Deterministic given identical turns.
func Interview(turns []conversation.Turn) provider.Prompt {
	return provider.Prompt{
		System: fmt.Sprintf(interviewSystemPrompt, Transcript(turns)),
		User:   interviewUserPrompt,
	}
}

// Note renders the SOAP-note prompt. The transcript must contain at least
// one patient turn.
func Note(turns []conversation.Turn, prof profile.Profile) (provider.Prompt, error) {
	hasPatient := false
	for _, t := range turns {
		if t.Role == conversation.RolePatient {
			hasPatient = true
			break
		}
	}
	if !hasPatient {
		return provider.Prompt{}, ErrInsufficientData
	}

	return provider.Prompt{
		System: noteSystemPrompt,
		User:   fmt.Sprintf(noteUserPrompt, Transcript(turns), prof.Summary()),
	}, nil
}

// Transcript renders turns as alternating "Patient:"/"Doctor:" lines.
func Transcript(turns []conversation.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "Patient"
		if t.Role == conversation.RoleAssistant {
			speaker = "Doctor"
		}
		lines = append(lines, speaker+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}
