package profile

import (
	"strings"
	"testing"

	"github.com/wardline/osler/internal/conversation"
)

func patientTurns(texts ...string) []conversation.Turn {
	turns := make([]conversation.Turn, 0, len(texts))
	for _, s := range texts {
		turns = append(turns, conversation.Turn{Role: conversation.RolePatient, Text: s})
	}
	return turns
}

func TestExtract_AgeFirstMatchWins(t *testing.T) {
	p := Extract(patientTurns("I am 25", "I am 40"))
	if p.Age == nil {
		t.Fatal("expected age to be extracted")
	}
	if *p.Age != 25 {
		t.Errorf("expected first age 25, got %d", *p.Age)
	}
}

func TestExtract_AgeRange(t *testing.T) {
	p := Extract(patientTurns("it happened 500 times, I am 33"))
	if p.Age == nil {
		t.Fatal("expected age to be extracted")
	}
	if *p.Age != 33 {
		t.Errorf("expected out-of-range token skipped, got %d", *p.Age)
	}
}

func TestExtract_SeverityLastMatchWins(t *testing.T) {
	p := Extract(patientTurns("pain 3/10", "pain 7/10"))
	if p.Severity["pain"] != "7/10" {
		t.Errorf("expected last severity 7/10, got %q", p.Severity["pain"])
	}
}

func TestExtract_SexFirstMatchWins(t *testing.T) {
	p := Extract(patientTurns("I am a woman", "my husband is male"))
	if p.Sex != SexFemale {
		t.Errorf("expected female (first match), got %q", p.Sex)
	}
}

func TestExtract_SexSubstringOverlap(t *testing.T) {
	// "female" contains "male" — must not be read as male.
	p := Extract(patientTurns("female, 28 years old"))
	if p.Sex != SexFemale {
		t.Errorf("expected female, got %q", p.Sex)
	}
	if p.Age == nil || *p.Age != 28 {
		t.Errorf("expected age 28, got %v", p.Age)
	}
}

func TestExtract_IgnoresAssistantTurns(t *testing.T) {
	turns := []conversation.Turn{
		{Role: conversation.RoleAssistant, Text: "are you male or female? any pain?"},
		{Role: conversation.RolePatient, Text: "no symptoms to report"},
	}
	p := Extract(turns)
	if p.Sex != "" {
		t.Errorf("expected no sex from assistant turn, got %q", p.Sex)
	}
	if len(p.ChiefComplaints) != 0 {
		t.Errorf("expected no complaints from assistant turn, got %v", p.ChiefComplaints)
	}
}

func TestExtract_ComplaintsAddedOnceVerbatim(t *testing.T) {
	p := Extract(patientTurns("my head hurts and I have a fever", "my head hurts and I have a fever"))
	if len(p.ChiefComplaints) != 1 {
		t.Fatalf("expected 1 complaint, got %d", len(p.ChiefComplaints))
	}
	if p.ChiefComplaints[0] != "my head hurts and I have a fever" {
		t.Errorf("expected verbatim turn text, got %q", p.ChiefComplaints[0])
	}
}

func TestExtract_TimelinePreservesOrder(t *testing.T) {
	p := Extract(patientTurns("it started two weeks ago", "got worse yesterday", "it started two weeks ago"))
	if len(p.Timeline) != 2 {
		t.Fatalf("expected 2 timeline mentions, got %d", len(p.Timeline))
	}
	if p.Timeline[0] != "it started two weeks ago" || p.Timeline[1] != "got worse yesterday" {
		t.Errorf("timeline out of order: %v", p.Timeline)
	}
}

func TestExtract_LocationFirstMatchPerPart(t *testing.T) {
	p := Extract(patientTurns("sharp pain in my stomach", "my stomach feels tight", "my chest also aches"))
	if p.Locations["stomach"] != "sharp pain in my stomach" {
		t.Errorf("expected first stomach mention kept, got %q", p.Locations["stomach"])
	}
	if p.Locations["chest"] != "my chest also aches" {
		t.Errorf("expected chest claimed by its own turn, got %q", p.Locations["chest"])
	}
}

func TestExtract_NothingFound(t *testing.T) {
	p := Extract(patientTurns("hello", "thanks doctor"))
	if p.Age != nil || p.Sex != "" {
		t.Errorf("expected no demographics, got age=%v sex=%q", p.Age, p.Sex)
	}
	if len(p.ChiefComplaints) != 0 || len(p.Timeline) != 0 || len(p.Severity) != 0 || len(p.Locations) != 0 {
		t.Errorf("expected empty profile, got %+v", p)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	turns := patientTurns("I am a 25 year old male", "stomach pain 6/10 started yesterday")
	a := Extract(turns)
	b := Extract(turns)
	if a.Summary() != b.Summary() {
		t.Errorf("extraction not idempotent:\n%s\nvs\n%s", a.Summary(), b.Summary())
	}
}

func TestSummary_Empty(t *testing.T) {
	p := Extract(nil)
	if p.Summary() != "No patient information collected yet" {
		t.Errorf("unexpected empty summary: %q", p.Summary())
	}
}

func TestSummary_Format(t *testing.T) {
	p := Extract(patientTurns("I am a 25 year old male", "stomach pain 6/10 started yesterday"))
	s := p.Summary()

	if !strings.Contains(s, "PATIENT: 25-year-old male") {
		t.Errorf("expected combined demographics line, got:\n%s", s)
	}
	if !strings.Contains(s, "CHIEF COMPLAINTS: stomach pain 6/10 started yesterday") {
		t.Errorf("expected complaints line, got:\n%s", s)
	}
	if !strings.Contains(s, "SEVERITY: pain: 6/10") {
		t.Errorf("expected severity line, got:\n%s", s)
	}
	if !strings.Contains(s, "LOCATION: stomach: stomach pain 6/10 started yesterday") {
		t.Errorf("expected location line, got:\n%s", s)
	}
}
