package ports

import (
	"context"

	"github.com/noteground/noteground/internal/core/domain"
)

// QueryAnswerer is the inbound contract for citation-verified answering.
// It returns a QueryResult for any model misbehavior; only generation
// infrastructure failure after retry exhaustion surfaces as an error.
type QueryAnswerer interface {
	AnswerQuery(ctx context.Context, question string, selector domain.ContextSelector, model string) (*domain.QueryResult, error)
}

// NoteIngestor is the inbound contract for note creation.
type NoteIngestor interface {
	CreateNote(ctx context.Context, content string, tags []string) (*domain.Note, error)
}

// NoteReader is the inbound read model for stored notes.
type NoteReader interface {
	GetByID(ctx context.Context, id string) (*domain.Note, error)
}

// NoteTagger is the inbound contract for asynchronous tag extraction.
type NoteTagger interface {
	TagByID(ctx context.Context, noteID string) error
}
