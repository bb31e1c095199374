// Package archive persists completed SOAP notes to Postgres for physician
// review. Conversation state itself is deliberately in-memory only; the
// archive holds just the finished artifact of each analyze request.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Archive struct {
	pool *pgxpool.Pool
}

// Note is one archived clinical note.
type Note struct {
	ID             uuid.UUID `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Title          string    `json:"title"`
	NoteText       string    `json:"note_text"`
	PatientSummary string    `json:"patient_summary"`
	Transcript     string    `json:"transcript"`
	CreatedAt      time.Time `json:"created_at"`
}

func New(ctx context.Context, databaseURL string) (*Archive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Archive{pool: pool}, nil
}

func (a *Archive) Close() {
	a.pool.Close()
}

func (a *Archive) Ping(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// EnsureSchema creates the clinical_notes table if it does not exist.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS clinical_notes (
			id UUID PRIMARY KEY,
			conversation_id TEXT NOT NULL,
			title TEXT NOT NULL,
			note_text TEXT NOT NULL,
			patient_summary TEXT NOT NULL,
			transcript TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create clinical_notes: %w", err)
	}
	return nil
}

// SaveNote writes a completed note and returns its archive id.
func (a *Archive) SaveNote(ctx context.Context, n Note) (uuid.UUID, error) {
	id := uuid.New()
	_, err := a.pool.Exec(ctx, `
		INSERT INTO clinical_notes (id, conversation_id, title, note_text, patient_summary, transcript, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		id, n.ConversationID, n.Title, n.NoteText, n.PatientSummary, n.Transcript,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

// Recent returns the newest archived notes, most recent first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Note, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.pool.Query(ctx, `
		SELECT id, conversation_id, title, note_text, patient_summary, transcript, created_at
		FROM clinical_notes
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.ConversationID, &n.Title, &n.NoteText, &n.PatientSummary, &n.Transcript, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}
