package conversation

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for operations against an unknown conversation id.
var ErrNotFound = errors.New("conversation not found")

// Store owns conversation lifetimes. Turns are append-only; the only way to
// shrink a transcript is Reset or Delete.
type Store interface {
	Create() Conversation
	Get(id string) (Conversation, error)
	Append(id string, turn Turn) error
	SetTitle(id, title string) error
	MarkSummarized(id string) error
	Delete(id string) error
	List() []Summary
	Reset(id string) error
}

// MemoryStore keeps all conversations in process memory. State does not
// survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]*Conversation)}
}

func (s *MemoryStore) Create() Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c := &Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Stage:     StageInterviewing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.convs[c.ID] = c
	return snapshot(c)
}

// Get returns a snapshot copy; callers never see later mutations.
func (s *MemoryStore) Get(id string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.convs[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return snapshot(c), nil
}

func (s *MemoryStore) Append(id string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return ErrNotFound
	}
	c.Turns = append(c.Turns, turn)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetTitle(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return ErrNotFound
	}
	c.Title = title
	return nil
}

// MarkSummarized moves the conversation to its terminal stage. The move is
// one-way; Reset is the only path back to Interviewing.
func (s *MemoryStore) MarkSummarized(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return ErrNotFound
	}
	c.Stage = StageSummarized
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.convs[id]; !ok {
		return ErrNotFound
	}
	delete(s.convs, id)
	return nil
}

func (s *MemoryStore) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Summary, 0, len(s.convs))
	for _, c := range s.convs {
		out = append(out, Summary{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Reset clears the transcript and returns the conversation to Interviewing,
// keeping its id. Effectively a fresh conversation under the same identity.
func (s *MemoryStore) Reset(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[id]
	if !ok {
		return ErrNotFound
	}
	c.Turns = nil
	c.Stage = StageInterviewing
	c.Title = DefaultTitle
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func snapshot(c *Conversation) Conversation {
	out := *c
	out.Turns = make([]Turn, len(c.Turns))
	copy(out.Turns, c.Turns)
	return out
}
