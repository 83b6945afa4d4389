package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/noteground/noteground/internal/core/domain"
	"github.com/noteground/noteground/internal/core/ports"
)

type AnswerConfig struct {
	DefaultModel string
	DefaultLimit int
	MaxNotes     int
}

// AnswerQueryUseCase runs one query through the answering pipeline:
// context built -> prompt composed -> generated -> parsed -> verified.
// The pipeline is a sequence of blocking steps; the generation call is the
// only suspension point and the use case holds no state between calls.
//
// Model-behavior faults (unparsable output, fabricated citations) are
// absorbed into the returned QueryResult. Only generation infrastructure
// failure after retry exhaustion returns an error.
type AnswerQueryUseCase struct {
	contexts  *NoteContextBuilder
	generator ports.TextGenerator
	cfg       AnswerConfig
}

func NewAnswerQueryUseCase(
	notes ports.NoteRepository,
	generator ports.TextGenerator,
	cfg AnswerConfig,
) *AnswerQueryUseCase {
	return &AnswerQueryUseCase{
		contexts:  NewNoteContextBuilder(notes, cfg.DefaultLimit, cfg.MaxNotes),
		generator: generator,
		cfg:       cfg,
	}
}

func (uc *AnswerQueryUseCase) AnswerQuery(
	ctx context.Context,
	question string,
	selector domain.ContextSelector,
	model string,
) (*domain.QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer query", errors.New("question is empty"))
	}
	if model == "" {
		model = uc.cfg.DefaultModel
	}

	noteCtx, err := uc.contexts.Build(ctx, selector)
	if err != nil {
		return nil, err
	}
	if noteCtx.Empty() {
		return unanswerableResult(), nil
	}

	queryType := classifyQuestion(question)
	prompt := composeAnswerPrompt(question, noteCtx)

	raw, err := uc.generator.Generate(ctx, model, prompt)
	if err != nil {
		return nil, domain.WrapError(domain.ErrGenerationFailed, "answer query", err)
	}

	parsed, err := parseGeneratedResponse(raw, queryType)
	if err != nil {
		return rejectedResult(raw, queryType, err), nil
	}

	v := verifyAgainstContext(noteCtx, parsed, queryType)
	return &domain.QueryResult{
		AnswerText: parsed.AnswerText,
		Citations:  v.Citations,
		QueryType:  queryType,
		Confidence: v.Confidence,
		Status:     v.Status,
		Reason:     v.Reason,
	}, nil
}

// unanswerableResult is the terminal short circuit for an empty note context:
// a valid "no answer" result produced without invoking generation.
func unanswerableResult() *domain.QueryResult {
	return &domain.QueryResult{
		QueryType:  domain.QueryUnanswerable,
		Status:     domain.StatusRejected,
		Confidence: 0,
		Citations:  []domain.Citation{},
		Reason:     "empty note context",
	}
}

// rejectedResult records a model-behavior fault. The raw answer text is kept
// so a caller can show unverified content distinctly from discarding it.
func rejectedResult(raw string, queryType domain.QueryType, cause error) *domain.QueryResult {
	return &domain.QueryResult{
		AnswerText: strings.TrimSpace(raw),
		Citations:  []domain.Citation{},
		QueryType:  queryType,
		Confidence: 0,
		Status:     domain.StatusRejected,
		Reason:     fmt.Sprintf("unparsable response: %v", cause),
	}
}
