// Package profile derives a structured patient profile from the patient side
// of a transcript using keyword and pattern matching. Extraction is a pure
// projection: it is recomputed from scratch for every note request and never
// cached.
package profile

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wardline/osler/internal/conversation"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Profile holds the fields recovered from patient turns. Unstated fields are
// nil/empty rather than zero-valued guesses.
type Profile struct {
	Age             *int
	Sex             Sex // empty when never stated
	ChiefComplaints []string
	Timeline        []string
	Severity        map[string]string
	Locations       map[string]string
}

var (
	complaintKeywords = []string{"pain", "ache", "hurt", "fever", "nausea", "vomit", "cough", "headache", "dizzy"}
	timelineKeywords  = []string{"day", "hour", "week", "month", "year", "ago", "started", "began", "today", "yesterday"}
	bodyParts         = []string{"abdomen", "stomach", "chest", "head", "back", "leg", "arm", "left", "right", "side"}

	intTokenRe  = regexp.MustCompile(`\b(\d{1,3})\b`)
	severityRe  = regexp.MustCompile(`\b(\d{1,2})/10\b`)
	maleWords   = []string{"male", "man"}
	femaleWords = []string{"female", "woman"}
)

// Extract scans the patient turns in transcript order.
//
// Matching rules are deliberately asymmetric: age and sex are
// first-match-wins, severity is last-match-wins ("pain 3/10" then "pain 7/10"
// yields 7/10). Locations are first-match-wins per body part, one part per
// turn.
func Extract(turns []conversation.Turn) Profile {
	p := Profile{
		Severity:  make(map[string]string),
		Locations: make(map[string]string),
	}

	for _, turn := range turns {
		if turn.Role != conversation.RolePatient {
			continue
		}
		text := strings.TrimSpace(turn.Text)
		lower := strings.ToLower(text)

		if p.Sex == "" {
			// "female"/"woman" contain "male"/"man" as substrings, so
			// check them first.
			if containsAny(lower, femaleWords) {
				p.Sex = SexFemale
			} else if containsAny(lower, maleWords) {
				p.Sex = SexMale
			}
		}

		if p.Age == nil {
			for _, m := range intTokenRe.FindAllString(text, -1) {
				n, err := strconv.Atoi(m)
				if err != nil {
					continue
				}
				if n >= 1 && n <= 120 {
					p.Age = &n
					break
				}
			}
		}

		if containsAny(lower, complaintKeywords) && !containsString(p.ChiefComplaints, text) {
			p.ChiefComplaints = append(p.ChiefComplaints, text)
		}

		if containsAny(lower, timelineKeywords) && !containsString(p.Timeline, text) {
			p.Timeline = append(p.Timeline, text)
		}

		if m := severityRe.FindStringSubmatch(text); m != nil {
			p.Severity["pain"] = m[1] + "/10"
		}

		for _, part := range bodyParts {
			if strings.Contains(lower, part) {
				if _, claimed := p.Locations[part]; !claimed {
					p.Locations[part] = text
				}
				break
			}
		}
	}

	return p
}

// Summary renders the profile as the labeled block embedded in the note
// prompt. Returns a fixed placeholder when nothing was extracted.
func (p Profile) Summary() string {
	var lines []string

	switch {
	case p.Age != nil && p.Sex != "":
		lines = append(lines, fmt.Sprintf("PATIENT: %d-year-old %s", *p.Age, p.Sex))
	case p.Age != nil:
		lines = append(lines, fmt.Sprintf("AGE: %d", *p.Age))
	case p.Sex != "":
		lines = append(lines, fmt.Sprintf("SEX: %s", p.Sex))
	}

	if len(p.ChiefComplaints) > 0 {
		lines = append(lines, "CHIEF COMPLAINTS: "+strings.Join(p.ChiefComplaints, "; "))
	}
	if len(p.Timeline) > 0 {
		lines = append(lines, "TIMELINE: "+strings.Join(p.Timeline, "; "))
	}
	if len(p.Severity) > 0 {
		lines = append(lines, "SEVERITY: "+joinMap(p.Severity))
	}
	if len(p.Locations) > 0 {
		lines = append(lines, "LOCATION: "+joinMap(p.Locations))
	}

	if len(lines) == 0 {
		return "No patient information collected yet"
	}
	return strings.Join(lines, "\n")
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func joinMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+m[k])
	}
	return strings.Join(parts, "; ")
}
