package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/wardline/osler/internal/conversation"
	"github.com/wardline/osler/internal/profile"
)

func TestInterview_IncludesFullTranscript(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RolePatient, Text: "my stomach hurts"},
		{Role: conversation.RoleAssistant, Text: "When did the pain start?"},
		{Role: conversation.RolePatient, Text: "two days ago"},
	}

	p := Interview(turns)

	if !strings.Contains(p.System, "Patient: my stomach hurts") {
		t.Errorf("system prompt missing patient line:\n%s", p.System)
	}
	if !strings.Contains(p.System, "Doctor: When did the pain start?") {
		t.Errorf("system prompt missing doctor line:\n%s", p.System)
	}
	if !strings.Contains(p.System, "NEVER ask a question whose answer already appears") {
		t.Errorf("system prompt missing repetition guard:\n%s", p.System)
	}
	if p.User != "What is your next question for this patient?" {
		t.Errorf("unexpected user prompt: %q", p.User)
	}
}

func TestInterview_Deterministic(t *testing.T) {
	turns := []conversation.Turn{{Role: conversation.RolePatient, Text: "headache"}}
	a := Interview(turns)
	b := Interview(turns)
	if a != b {
		t.Error("identical inputs produced different prompts")
	}
}

func TestNote_RequiresPatientTurn(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleAssistant, Text: "Hello, how can I help?"},
	}
	_, err := Note(turns, profile.Profile{})
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestNote_MandatesNotDocumented(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RolePatient, Text: "my head hurts, 6/10"},
	}
	prof := profile.Extract(turns)

	p, err := Note(turns, prof)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(p.System, `write "Not documented"`) {
		t.Errorf("system prompt missing Not documented mandate:\n%s", p.System)
	}
	if !strings.Contains(p.User, `section O must read "Not documented"`) {
		t.Errorf("user prompt missing objective-section mandate:\n%s", p.User)
	}
	if !strings.Contains(p.System, "Do NOT invent vital signs") {
		t.Errorf("system prompt missing anti-fabrication rule:\n%s", p.System)
	}
}

func TestNote_OnlyTranscriptContent(t *testing.T) {
	// A transcript with zero objective-category mentions must not pull vitals
	// or exam findings into the rendered prompt from anywhere else.
	turns := []conversation.Turn{
		{Role: conversation.RolePatient, Text: "weak nails for 2 weeks"},
	}
	p, err := Note(turns, profile.Extract(turns))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, forbidden := range []string{"blood pressure", "heart rate", "temperature reading", "lab values"} {
		if strings.Contains(strings.ToLower(p.User), forbidden) {
			t.Errorf("prompt injected objective data %q:\n%s", forbidden, p.User)
		}
	}
	if !strings.Contains(p.User, "Patient: weak nails for 2 weeks") {
		t.Errorf("prompt missing transcript content:\n%s", p.User)
	}
}

func TestNote_EmbedsProfileSummary(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RolePatient, Text: "I am a 25 year old male"},
		{Role: conversation.RolePatient, Text: "stomach pain 6/10"},
	}
	p, err := Note(turns, profile.Extract(turns))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(p.User, "PATIENT: 25-year-old male") {
		t.Errorf("prompt missing extracted demographics:\n%s", p.User)
	}
	if !strings.Contains(p.User, "SEVERITY: pain: 6/10") {
		t.Errorf("prompt missing extracted severity:\n%s", p.User)
	}
}

func TestTranscript_Empty(t *testing.T) {
	if got := Transcript(nil); got != "" {
		t.Errorf("expected empty transcript, got %q", got)
	}
}
