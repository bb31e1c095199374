// Package pipeline implements the two-stage conversation flow: interview
// turns while a conversation is in the interviewing stage, then a single
// SOAP note on an explicit analyze request. The stage transition is never
// automatic; no number of chat turns triggers it.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/wardline/osler/internal/archive"
	"github.com/wardline/osler/internal/conversation"
	"github.com/wardline/osler/internal/events"
	"github.com/wardline/osler/internal/profile"
	"github.com/wardline/osler/internal/prompt"
	"github.com/wardline/osler/internal/provider"
)

// ErrAlreadySummarized is returned for an analyze request against a
// conversation that already produced its note.
var ErrAlreadySummarized = errors.New("analysis already completed for this conversation")

// ClosedResponse is the fixed reply for chat messages after summarization.
// No model call is made and no turns are appended.
const ClosedResponse = "Data collection is complete. Please create a new conversation for another patient interview."

// DegradedResponse is the user-facing text substituted by the HTTP layer
// when the completion backend fails during an interview turn.
const DegradedResponse = "I'm having difficulty processing your request. Please try again."

const (
	emptyInterviewReply = "Could you please provide more details about your symptoms?"
	emptyNoteReply      = "SOAP note generation failed"
	titleMaxLen         = 50
)

type Pipeline struct {
	store       conversation.Store
	interviewer provider.Completer
	scribe      provider.Completer
	archive     *archive.Archive // optional
	bus         *events.Client   // optional
	logger      *slog.Logger

	interviewTokens int
	noteTokens      int

	// locks serialises requests per conversation id so concurrent chats
	// against one conversation cannot interleave their appends.
	locks sync.Map
}

func New(store conversation.Store, interviewer, scribe provider.Completer, arch *archive.Archive, bus *events.Client, interviewTokens, noteTokens int, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:           store,
		interviewer:     interviewer,
		scribe:          scribe,
		archive:         arch,
		bus:             bus,
		logger:          logger,
		interviewTokens: interviewTokens,
		noteTokens:      noteTokens,
	}
}

// ChatResult is the outcome of one inbound patient message.
type ChatResult struct {
	ConversationID   string
	Response         string
	PatientTurnCount int
	ShowNoteButton   bool
}

// Chat appends the patient message and, while the conversation is
// interviewing, asks the backend for one follow-up question. The patient turn
// is appended before the model call and is kept even when the call fails;
// the assistant turn is appended only on success. A closed (summarized)
// conversation gets the fixed informational reply with no appends.
func (p *Pipeline) Chat(ctx context.Context, conversationID, message string) (ChatResult, error) {
	conv, err := p.store.Get(conversationID)
	if conversationID == "" || errors.Is(err, conversation.ErrNotFound) {
		conv = p.store.Create()
	} else if err != nil {
		return ChatResult{}, err
	}

	unlock := p.lock(conv.ID)
	defer unlock()

	conv, err = p.store.Get(conv.ID)
	if err != nil {
		return ChatResult{}, err
	}

	if conv.Stage == conversation.StageSummarized {
		return ChatResult{
			ConversationID:   conv.ID,
			Response:         ClosedResponse,
			PatientTurnCount: conv.PatientTurnCount(),
		}, nil
	}

	if err := p.store.Append(conv.ID, conversation.Turn{
		Role:      conversation.RolePatient,
		Text:      message,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return ChatResult{}, err
	}
	if conv.PatientTurnCount() == 0 {
		if err := p.store.SetTitle(conv.ID, titleFrom(message)); err != nil {
			return ChatResult{}, err
		}
	}

	conv, err = p.store.Get(conv.ID)
	if err != nil {
		return ChatResult{}, err
	}
	patientCount := conv.PatientTurnCount()

	text, err := p.interviewer.Complete(ctx, prompt.Interview(conv.Turns), provider.Params{
		MaxTokens:   p.interviewTokens,
		Temperature: 0.0,
	})
	if err != nil {
		// The patient turn stays in the transcript; only the assistant
		// side is withheld.
		p.logger.Error("interview completion failed", "conversation_id", conv.ID, "error", err)
		return ChatResult{ConversationID: conv.ID, PatientTurnCount: patientCount}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = emptyInterviewReply
	}

	if err := p.store.Append(conv.ID, conversation.Turn{
		Role:      conversation.RoleAssistant,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return ChatResult{}, err
	}

	p.logger.Info("interview turn completed",
		"conversation_id", conv.ID,
		"patient_turns", patientCount,
	)

	return ChatResult{
		ConversationID:   conv.ID,
		Response:         text,
		PatientTurnCount: patientCount,
		ShowNoteButton:   patientCount >= 2,
	}, nil
}

// Analyze generates the SOAP note for a conversation and moves it to the
// summarized stage. Requires at least two patient turns; a conversation
// yields exactly one note.
func (p *Pipeline) Analyze(ctx context.Context, conversationID string) (string, error) {
	conv, err := p.store.Get(conversationID)
	if err != nil {
		return "", err
	}

	unlock := p.lock(conv.ID)
	defer unlock()

	conv, err = p.store.Get(conv.ID)
	if err != nil {
		return "", err
	}

	if conv.Stage == conversation.StageSummarized {
		return "", ErrAlreadySummarized
	}
	if conv.PatientTurnCount() < 2 {
		return "", prompt.ErrInsufficientData
	}

	prof := profile.Extract(conv.Turns)
	pr, err := prompt.Note(conv.Turns, prof)
	if err != nil {
		return "", err
	}

	p.logger.Info("generating clinical note",
		"conversation_id", conv.ID,
		"patient_turns", conv.PatientTurnCount(),
	)

	note, err := p.scribe.Complete(ctx, pr, provider.Params{
		MaxTokens:   p.noteTokens,
		Temperature: 0.2,
	})
	if err != nil {
		// Terminal for this request; the conversation stays interviewing
		// so the caller can resubmit.
		p.logger.Error("note generation failed", "conversation_id", conv.ID, "error", err)
		return "", err
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = emptyNoteReply
	}

	if err := p.store.Append(conv.ID, conversation.Turn{
		Role:      conversation.RoleAssistant,
		Text:      note,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		// The generated text is lost on a store failure; delivery is
		// at-most-once.
		return "", err
	}
	if err := p.store.MarkSummarized(conv.ID); err != nil {
		return "", err
	}

	p.publishNote(ctx, conv, prof, note)

	return note, nil
}

// Reset clears a conversation back to the interviewing stage under its lock.
func (p *Pipeline) Reset(conversationID string) error {
	unlock := p.lock(conversationID)
	defer unlock()
	return p.store.Reset(conversationID)
}

// publishNote archives the note and emits the bus event. Both sinks are
// optional and their failures never fail the analyze request.
func (p *Pipeline) publishNote(ctx context.Context, conv conversation.Conversation, prof profile.Profile, note string) {
	if p.archive != nil {
		if _, err := p.archive.SaveNote(ctx, archive.Note{
			ConversationID: conv.ID,
			Title:          conv.Title,
			NoteText:       note,
			PatientSummary: prof.Summary(),
			Transcript:     prompt.Transcript(conv.Turns),
		}); err != nil {
			p.logger.Error("note archive failed", "conversation_id", conv.ID, "error", err)
		}
	}

	if p.bus != nil {
		if err := p.bus.Publish(events.SubjectNoteGenerated, events.NoteGenerated{
			ConversationID: conv.ID,
			Title:          conv.Title,
			PatientTurns:   conv.PatientTurnCount(),
			NoteLength:     len(note),
			GeneratedAt:    time.Now().UTC(),
		}); err != nil {
			p.logger.Warn("note event publish failed", "conversation_id", conv.ID, "error", err)
		}
	}
}

func (p *Pipeline) lock(id string) func() {
	v, _ := p.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func titleFrom(message string) string {
	if len(message) > titleMaxLen {
		return message[:titleMaxLen] + "..."
	}
	return message
}
