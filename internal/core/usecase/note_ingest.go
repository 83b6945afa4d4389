package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noteground/noteground/internal/core/domain"
	"github.com/noteground/noteground/internal/core/ports"
)

type IngestNoteUseCase struct {
	repo  ports.NoteRepository
	queue ports.MessageQueue
}

func NewIngestNoteUseCase(repo ports.NoteRepository, queue ports.MessageQueue) *IngestNoteUseCase {
	return &IngestNoteUseCase{
		repo:  repo,
		queue: queue,
	}
}

func (uc *IngestNoteUseCase) CreateNote(ctx context.Context, content string, tags []string) (*domain.Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create note", errors.New("content is empty"))
	}

	now := time.Now().UTC()
	note := &domain.Note{
		ID:        uuid.NewString(),
		Content:   content,
		Tags:      normalizeTags(tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	if err := uc.queue.PublishNoteCreated(ctx, note.ID); err != nil {
		return nil, fmt.Errorf("publish note created event: %w", err)
	}

	return note, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
