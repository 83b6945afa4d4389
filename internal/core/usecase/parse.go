package usecase

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/noteground/noteground/internal/core/domain"
)

// Self-reported confidence defaults to a neutral midpoint when the model
// omits the trailing confidence line.
const defaultSelfConfidence = 0.5

var (
	// Tolerates drift around the requested marker format: extra whitespace,
	// doubled brackets, comma-separated id lists.
	citationMarkerRe = regexp.MustCompile(`\[+\s*([A-Za-z0-9_.:-]+(?:\s*,\s*[A-Za-z0-9_.:-]+)*)\s*\]+`)
	confidenceLineRe = regexp.MustCompile(`(?i)^confidence\s*[:=-]?\s*([0-9]*\.?[0-9]+)\s*$`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.!?,;:])`)
	spaceRuns        = regexp.MustCompile(`[ \t]{2,}`)
)

type parsedSentence struct {
	Text      string
	Citations []string
}

type parsedResponse struct {
	AnswerText     string
	Sentences      []parsedSentence
	RawCitations   []string
	SelfConfidence float64
}

// parseGeneratedResponse extracts the answer body, the per-sentence citation
// tokens in encounter order, and the self-reported confidence from raw model
// output. Sentences without citations are kept and carried forward so the
// verifier can downgrade instead of truncating the answer. A factual answer
// with no citation markers anywhere has no verifiable structure at all and is
// rejected as unparsable.
func parseGeneratedResponse(raw string, queryType domain.QueryType) (parsedResponse, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return parsedResponse{}, domain.WrapError(domain.ErrUnparsableResponse, "parse response", errors.New("empty model output"))
	}

	body, selfConfidence := detachSelfConfidence(body)

	parsed := parsedResponse{
		AnswerText:     stripMarkers(body),
		SelfConfidence: selfConfidence,
	}

	for _, segment := range splitSentences(body) {
		tokens := extractCitationTokens(segment)
		text := stripMarkers(segment)

		// A segment that is only a citation marker (e.g. "sentence. [1]")
		// belongs to the sentence before it.
		if text == "" || isBarePunctuation(text) {
			if len(parsed.Sentences) > 0 && len(tokens) > 0 {
				last := &parsed.Sentences[len(parsed.Sentences)-1]
				last.Citations = append(last.Citations, tokens...)
				parsed.RawCitations = append(parsed.RawCitations, tokens...)
			}
			continue
		}

		parsed.Sentences = append(parsed.Sentences, parsedSentence{
			Text:      text,
			Citations: tokens,
		})
		parsed.RawCitations = append(parsed.RawCitations, tokens...)
	}

	if len(parsed.Sentences) == 0 {
		return parsedResponse{}, domain.WrapError(domain.ErrUnparsableResponse, "parse response", errors.New("no answer sentences"))
	}
	if queryType == domain.QueryFactual && len(parsed.RawCitations) == 0 {
		return parsedResponse{}, domain.WrapError(domain.ErrUnparsableResponse, "parse response", errors.New("no citation markers in factual answer"))
	}

	return parsed, nil
}

// detachSelfConfidence removes a trailing "Confidence: <n>" line when present
// and returns the clamped value, defaulting to the neutral midpoint.
func detachSelfConfidence(body string) (string, float64) {
	lines := strings.Split(body, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		match := confidenceLineRe.FindStringSubmatch(line)
		if match == nil {
			break
		}
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			break
		}
		remainder := strings.TrimSpace(strings.Join(lines[:i], "\n"))
		return remainder, clamp01(value)
	}
	return body, defaultSelfConfidence
}

func extractCitationTokens(segment string) []string {
	matches := citationMarkerRe.FindAllStringSubmatch(segment, -1)
	if len(matches) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(matches))
	for _, match := range matches {
		for _, token := range strings.Split(match[1], ",") {
			token = strings.TrimSpace(token)
			if token != "" {
				tokens = append(tokens, token)
			}
		}
	}
	return tokens
}

func stripMarkers(s string) string {
	s = citationMarkerRe.ReplaceAllString(s, "")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = spaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func splitSentences(body string) []string {
	var out []string
	var current strings.Builder
	for _, r := range body {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if segment := strings.TrimSpace(current.String()); segment != "" {
				out = append(out, segment)
			}
			current.Reset()
		}
	}
	if segment := strings.TrimSpace(current.String()); segment != "" {
		out = append(out, segment)
	}
	return out
}

func isBarePunctuation(s string) bool {
	return strings.Trim(s, ".!?,;: ") == ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
