package usecase

import (
	"strings"
	"testing"

	"github.com/noteground/noteground/internal/core/domain"
)

func TestParseExtractsCitationsAndConfidence(t *testing.T) {
	raw := "Paris is the capital of France [1].\nFrance is in Europe [1, 2].\nConfidence: 0.85"

	parsed, err := parseGeneratedResponse(raw, domain.QueryFactual)
	if err != nil {
		t.Fatalf("parseGeneratedResponse() error = %v", err)
	}
	if parsed.SelfConfidence != 0.85 {
		t.Fatalf("expected self confidence 0.85, got %f", parsed.SelfConfidence)
	}
	if len(parsed.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(parsed.Sentences))
	}
	if got := parsed.Sentences[1].Citations; len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected citations [1 2], got %v", got)
	}
	if want := []string{"1", "1", "2"}; len(parsed.RawCitations) != 3 || parsed.RawCitations[2] != want[2] {
		t.Fatalf("expected raw citations in encounter order, got %v", parsed.RawCitations)
	}
	if strings.Contains(parsed.AnswerText, "[1]") || strings.Contains(parsed.AnswerText, "Confidence") {
		t.Fatalf("expected markers and confidence line stripped, got %q", parsed.AnswerText)
	}
}

func TestParseToleratesFormatDrift(t *testing.T) {
	for _, raw := range []string{
		"Paris is the capital [1].",
		"Paris is the capital [ 1 ].",
		"Paris is the capital [[1]].",
		"Paris is the capital. [1]",
	} {
		parsed, err := parseGeneratedResponse(raw, domain.QueryFactual)
		if err != nil {
			t.Fatalf("parseGeneratedResponse(%q) error = %v", raw, err)
		}
		if len(parsed.Sentences) != 1 {
			t.Fatalf("%q: expected marker-only segment merged into 1 sentence, got %d", raw, len(parsed.Sentences))
		}
		if got := parsed.Sentences[0].Citations; len(got) != 1 || got[0] != "1" {
			t.Fatalf("%q: expected citation token 1, got %v", raw, got)
		}
	}
}

func TestParseDefaultsSelfConfidenceToMidpoint(t *testing.T) {
	parsed, err := parseGeneratedResponse("Paris is the capital [1].", domain.QueryFactual)
	if err != nil {
		t.Fatalf("parseGeneratedResponse() error = %v", err)
	}
	if parsed.SelfConfidence != defaultSelfConfidence {
		t.Fatalf("expected neutral midpoint %f, got %f", defaultSelfConfidence, parsed.SelfConfidence)
	}
}

func TestParseClampsSelfConfidence(t *testing.T) {
	parsed, err := parseGeneratedResponse("Paris is the capital [1].\nConfidence: 7", domain.QueryFactual)
	if err != nil {
		t.Fatalf("parseGeneratedResponse() error = %v", err)
	}
	if parsed.SelfConfidence != 1 {
		t.Fatalf("expected clamp to 1, got %f", parsed.SelfConfidence)
	}
}

func TestParseKeepsUncitedSentences(t *testing.T) {
	raw := "Paris is the capital [1]. It is also a nice city."

	parsed, err := parseGeneratedResponse(raw, domain.QueryFactual)
	if err != nil {
		t.Fatalf("parseGeneratedResponse() error = %v", err)
	}
	if len(parsed.Sentences) != 2 {
		t.Fatalf("expected uncited sentence carried forward, got %d sentences", len(parsed.Sentences))
	}
	if len(parsed.Sentences[1].Citations) != 0 {
		t.Fatalf("expected second sentence uncited, got %v", parsed.Sentences[1].Citations)
	}
}

func TestParseFailsOnFactualAnswerWithoutMarkers(t *testing.T) {
	_, err := parseGeneratedResponse("Paris is the capital of France.", domain.QueryFactual)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnparsableResponse) {
		t.Fatalf("expected ErrUnparsableResponse, got %v", err)
	}
}

func TestParseAllowsExploratoryAnswerWithoutMarkers(t *testing.T) {
	parsed, err := parseGeneratedResponse("The notes touch several themes.", domain.QueryExploratory)
	if err != nil {
		t.Fatalf("parseGeneratedResponse() error = %v", err)
	}
	if len(parsed.RawCitations) != 0 {
		t.Fatalf("expected no citations, got %v", parsed.RawCitations)
	}
}

func TestParseFailsOnEmptyOutput(t *testing.T) {
	for _, raw := range []string{"", "   \n  ", "Confidence: 0.5"} {
		_, err := parseGeneratedResponse(raw, domain.QueryExploratory)
		if err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		if !domain.IsKind(err, domain.ErrUnparsableResponse) {
			t.Fatalf("expected ErrUnparsableResponse for %q, got %v", raw, err)
		}
	}
}
