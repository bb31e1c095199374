package conversation

import "time"

type Role string

const (
	RolePatient   Role = "patient"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Immutable once appended.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Stage is the pipeline phase of a conversation. It moves from Interviewing
// to Summarized exactly once; only an explicit reset goes back.
type Stage string

const (
	StageInterviewing Stage = "interviewing"
	StageSummarized   Stage = "summarized"
)

// DefaultTitle is used until the first patient message arrives.
const DefaultTitle = "New Patient"

type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Turns     []Turn    `json:"turns"`
	Stage     Stage     `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PatientTurnCount returns the number of patient turns in the transcript.
func (c *Conversation) PatientTurnCount() int {
	n := 0
	for _, t := range c.Turns {
		if t.Role == RolePatient {
			n++
		}
	}
	return n
}

// PatientTurns returns the patient turns in transcript order.
func (c *Conversation) PatientTurns() []Turn {
	var out []Turn
	for _, t := range c.Turns {
		if t.Role == RolePatient {
			out = append(out, t)
		}
	}
	return out
}

// Summary is the list-view projection of a conversation.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
