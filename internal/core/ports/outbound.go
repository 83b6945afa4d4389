package ports

import (
	"context"

	"github.com/noteground/noteground/internal/core/domain"
)

// NoteRepository persists and reads notes. GetByIDs preserves the requested
// order semantics of the store (ascending id) and fails per missing id;
// ListByTags returns an empty slice when nothing matches.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Note, error)
	ListByTags(ctx context.Context, tags []string, limit int) ([]domain.Note, error)
	SaveTags(ctx context.Context, id string, tags []string) error
}

// TextGenerator is the narrow capability boundary around the external LLM.
// Implementations own retry/backoff for transient faults; a non-error return
// is raw untrusted text for the parser.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// TagExtractor derives normalized tags with confidence from note content.
type TagExtractor interface {
	ExtractTags(ctx context.Context, content string) (domain.TagExtraction, error)
}

// MessageQueue publishes/consumes note-created events for async tagging.
type MessageQueue interface {
	PublishNoteCreated(ctx context.Context, noteID string) error
	SubscribeNoteCreated(ctx context.Context, handler func(context.Context, string) error) error
}
