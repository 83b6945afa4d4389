package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/noteground/noteground/internal/core/ports"
)

// TagNoteUseCase runs asynchronous tag extraction for one note: fetch the
// content, call the tagging capability, and persist the normalized tags.
// Extractions below the confidence floor leave the note's existing tags
// untouched.
type TagNoteUseCase struct {
	repo          ports.NoteRepository
	extractor     ports.TagExtractor
	minConfidence float64
}

func NewTagNoteUseCase(repo ports.NoteRepository, extractor ports.TagExtractor, minConfidence float64) *TagNoteUseCase {
	return &TagNoteUseCase{
		repo:          repo,
		extractor:     extractor,
		minConfidence: minConfidence,
	}
}

func (uc *TagNoteUseCase) TagByID(ctx context.Context, noteID string) error {
	note, err := uc.repo.GetByID(ctx, noteID)
	if err != nil {
		return fmt.Errorf("fetch note by id: %w", err)
	}

	extraction, err := uc.extractor.ExtractTags(ctx, note.Content)
	if err != nil {
		return fmt.Errorf("extract tags: %w", err)
	}

	tags := normalizeTags(extraction.Tags)
	if len(tags) == 0 || extraction.Confidence < uc.minConfidence {
		slog.Info("tag_extraction_skipped",
			"note_id", noteID,
			"tags", len(tags),
			"confidence", extraction.Confidence,
		)
		return nil
	}

	if err := uc.repo.SaveTags(ctx, noteID, tags); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}
