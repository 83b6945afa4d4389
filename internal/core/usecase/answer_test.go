package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/noteground/noteground/internal/core/domain"
)

type noteRepoFake struct {
	notes      map[string]domain.Note
	byTags     []domain.Note
	getByIDErr error
}

func (f *noteRepoFake) Create(context.Context, *domain.Note) error { return nil }
func (f *noteRepoFake) SaveTags(context.Context, string, []string) error {
	return nil
}
func (f *noteRepoFake) GetByID(_ context.Context, id string) (*domain.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNoteNotFound, "get note", errors.New(id))
	}
	return &note, nil
}
func (f *noteRepoFake) GetByIDs(_ context.Context, ids []string) ([]domain.Note, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	out := make([]domain.Note, 0, len(ids))
	for _, id := range ids {
		note, ok := f.notes[id]
		if !ok {
			return nil, domain.WrapError(domain.ErrNoteNotFound, "get notes", errors.New(id))
		}
		out = append(out, note)
	}
	return out, nil
}
func (f *noteRepoFake) ListByTags(context.Context, []string, int) ([]domain.Note, error) {
	return f.byTags, nil
}

type generatorFake struct {
	calls    int
	response string
	err      error
}

func (f *generatorFake) Generate(context.Context, string, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func parisRepo() *noteRepoFake {
	return &noteRepoFake{notes: map[string]domain.Note{
		"1": {ID: "1", Content: "Paris is the capital of France", CreatedAt: time.Now().UTC()},
	}}
}

func newAnswerUC(repo *noteRepoFake, gen *generatorFake) *AnswerQueryUseCase {
	return NewAnswerQueryUseCase(repo, gen, AnswerConfig{
		DefaultModel: "test-model",
		DefaultLimit: 10,
		MaxNotes:     50,
	})
}

func TestAnswerQueryVerifiedScenario(t *testing.T) {
	gen := &generatorFake{response: "Paris is the capital of France [1].\nConfidence: 0.9"}
	uc := newAnswerUC(parisRepo(), gen)

	result, err := uc.AnswerQuery(context.Background(), "What is the capital of France?", domain.ContextSelector{NoteIDs: []string{"1"}}, "")
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}
	if result.Status != domain.StatusVerified {
		t.Fatalf("expected verified, got %s (reason: %s)", result.Status, result.Reason)
	}
	if result.QueryType != domain.QueryFactual {
		t.Fatalf("expected factual query type, got %s", result.QueryType)
	}
	if !strings.Contains(result.AnswerText, "Paris") {
		t.Fatalf("expected answer to mention Paris, got %q", result.AnswerText)
	}
	if strings.Contains(result.AnswerText, "[1]") {
		t.Fatalf("expected citation marker stripped from answer, got %q", result.AnswerText)
	}
	if len(result.Citations) != 1 || result.Citations[0].NoteID != "1" || !result.Citations[0].Resolved {
		t.Fatalf("expected one resolved citation to note 1, got %+v", result.Citations)
	}
	if result.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9 (full coverage x self-report), got %f", result.Confidence)
	}
}

func TestAnswerQueryFlagsFabricatedCitation(t *testing.T) {
	gen := &generatorFake{response: "Paris is the capital [99].\nConfidence: 0.9"}
	uc := newAnswerUC(parisRepo(), gen)

	result, err := uc.AnswerQuery(context.Background(), "What is the capital of France?", domain.ContextSelector{NoteIDs: []string{"1"}}, "")
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}
	if result.Status == domain.StatusVerified {
		t.Fatalf("fabricated citation must not verify")
	}
	unresolved := result.UnresolvedCitations()
	if len(unresolved) != 1 || unresolved[0].NoteID != "99" {
		t.Fatalf("expected note 99 flagged unresolved, got %+v", result.Citations)
	}
	for _, c := range result.ResolvedCitations() {
		if c.NoteID == "99" {
			t.Fatalf("note 99 must never appear as a resolved citation")
		}
	}
	if !strings.Contains(result.Reason, "99") {
		t.Fatalf("expected reason naming the unresolved id, got %q", result.Reason)
	}
}

func TestAnswerQueryEmptyContextSkipsGeneration(t *testing.T) {
	gen := &generatorFake{response: "unused"}
	uc := newAnswerUC(&noteRepoFake{notes: map[string]domain.Note{}}, gen)

	result, err := uc.AnswerQuery(context.Background(), "What about nothing?", domain.ContextSelector{Tags: []string{"missing"}}, "")
	if err != nil {
		t.Fatalf("AnswerQuery() error = %v", err)
	}
	if result.QueryType != domain.QueryUnanswerable {
		t.Fatalf("expected unanswerable, got %s", result.QueryType)
	}
	if gen.calls != 0 {
		t.Fatalf("expected zero generator calls for empty context, got %d", gen.calls)
	}
	if result.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %f", result.Confidence)
	}
}

func TestAnswerQueryIsIdempotentForDeterministicGenerator(t *testing.T) {
	gen := &generatorFake{response: "Paris is the capital of France [1].\nConfidence: 0.8"}
	uc := newAnswerUC(parisRepo(), gen)
	selector := domain.ContextSelector{NoteIDs: []string{"1"}}

	first, err := uc.AnswerQuery(context.Background(), "What is the capital of France?", selector, "")
	if err != nil {
		t.Fatalf("first AnswerQuery() error = %v", err)
	}
	second, err := uc.AnswerQuery(context.Background(), "What is the capital of France?", selector, "")
	if err != nil {
		t.Fatalf("second AnswerQuery() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestAnswerQuerySurfacesGenerationFailure(t *testing.T) {
	gen := &generatorFake{err: errors.New("connection refused")}
	uc := newAnswerUC(parisRepo(), gen)

	_, err := uc.AnswerQuery(context.Background(), "What is the capital of France?", domain.ContextSelector{NoteIDs: []string{"1"}}, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestAnswerQueryRejectsUnparsableFactualResponse(t *testing.T) {
	gen := &generatorFake{response: "Paris is the capital of France."}
	uc := newAnswerUC(parisRepo(), gen)

	result, err := uc.AnswerQuery(context.Background(), "What is the capital of France?", domain.ContextSelector{NoteIDs: []string{"1"}}, "")
	if err != nil {
		t.Fatalf("model misbehavior must not surface as error, got %v", err)
	}
	if result.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %s", result.Status)
	}
	if result.AnswerText == "" {
		t.Fatalf("rejected result must still carry the raw answer text")
	}
	if result.Reason == "" {
		t.Fatalf("rejected result must carry a failure reason")
	}
}

func TestAnswerQueryRejectsEmptyQuestion(t *testing.T) {
	uc := newAnswerUC(parisRepo(), &generatorFake{})

	_, err := uc.AnswerQuery(context.Background(), "   ", domain.ContextSelector{NoteIDs: []string{"1"}}, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnswerQueryPropagatesMissingNote(t *testing.T) {
	uc := newAnswerUC(parisRepo(), &generatorFake{response: "x [1]."})

	_, err := uc.AnswerQuery(context.Background(), "What is missing?", domain.ContextSelector{NoteIDs: []string{"1", "2"}}, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}
