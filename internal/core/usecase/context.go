package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/noteground/noteground/internal/core/domain"
	"github.com/noteground/noteground/internal/core/ports"
)

// NoteContextBuilder selects and orders the candidate notes for one query.
// Ordering is ascending by id so repeated calls with the same selector are
// reproducible. An empty selection is a valid outcome, not an error.
type NoteContextBuilder struct {
	notes        ports.NoteRepository
	defaultLimit int
	maxNotes     int
}

func NewNoteContextBuilder(notes ports.NoteRepository, defaultLimit, maxNotes int) *NoteContextBuilder {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxNotes <= 0 {
		maxNotes = 50
	}
	return &NoteContextBuilder{
		notes:        notes,
		defaultLimit: defaultLimit,
		maxNotes:     maxNotes,
	}
}

func (b *NoteContextBuilder) Build(ctx context.Context, selector domain.ContextSelector) (domain.NoteContext, error) {
	if selector.Explicit() {
		ids := dedupeIDs(selector.NoteIDs)
		if len(ids) > b.maxNotes {
			return domain.NoteContext{}, domain.WrapError(domain.ErrInvalidInput, "build note context",
				fmt.Errorf("selector names %d notes, limit is %d", len(ids), b.maxNotes))
		}
		notes, err := b.notes.GetByIDs(ctx, ids)
		if err != nil {
			return domain.NoteContext{}, fmt.Errorf("fetch notes by ids: %w", err)
		}
		return orderedContext(notes), nil
	}

	limit := selector.Limit
	if limit <= 0 {
		limit = b.defaultLimit
	}
	if limit > b.maxNotes {
		limit = b.maxNotes
	}
	notes, err := b.notes.ListByTags(ctx, selector.Tags, limit)
	if err != nil {
		return domain.NoteContext{}, fmt.Errorf("list notes by tags: %w", err)
	}
	return orderedContext(notes), nil
}

func orderedContext(notes []domain.Note) domain.NoteContext {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].ID < notes[j].ID
	})
	return domain.NewNoteContext(notes)
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
