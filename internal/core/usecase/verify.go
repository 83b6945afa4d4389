package usecase

import (
	"fmt"
	"strings"

	"github.com/noteground/noteground/internal/core/domain"
)

// verdict is the single outcome of citation verification. Status, confidence
// and the flagged citation list are produced together so an inconsistent
// result (verified status with unresolved citations) cannot be assembled.
type verdict struct {
	Status     domain.VerificationStatus
	Confidence float64
	Citations  []domain.Citation
	Reason     string
}

// verifyAgainstContext checks every extracted citation against the closed
// note context and derives the verification status and confidence. Pure
// function of its inputs. A citation referencing an id outside the context is
// fabrication under closed-world verification: it is flagged, never dropped.
//
// Confidence is computed, not passed through: grounding coverage scales the
// model's self-report, so an overconfident ungrounded answer cannot score
// high. Factual queries measure coverage per sentence; summarization and
// exploratory queries tolerate synthesis across notes and measure coverage
// over the citation list instead.
func verifyAgainstContext(noteCtx domain.NoteContext, parsed parsedResponse, queryType domain.QueryType) verdict {
	var (
		citations         []domain.Citation
		unresolvedIDs     []string
		sentencesResolved int
		citationsTotal    int
		citationsResolved int
		uncitedSentences  int
	)
	seen := map[string]bool{}
	sentencesTotal := len(parsed.Sentences)

	for _, sentence := range parsed.Sentences {
		resolvedHere := false
		for _, token := range sentence.Citations {
			resolved := noteCtx.Contains(token)
			citationsTotal++
			if resolved {
				citationsResolved++
				resolvedHere = true
			} else if !seen[token] {
				unresolvedIDs = append(unresolvedIDs, token)
			}
			if !seen[token] {
				seen[token] = true
				citations = append(citations, domain.Citation{
					NoteID:   token,
					Claim:    sentence.Text,
					Resolved: resolved,
				})
			}
		}
		if resolvedHere {
			sentencesResolved++
		}
		if len(sentence.Citations) == 0 {
			uncitedSentences++
		}
	}

	coverage := groundingCoverage(queryType, sentencesTotal, sentencesResolved, citationsTotal, citationsResolved)
	confidence := clamp01(coverage * parsed.SelfConfidence)

	fullyCited := queryType != domain.QueryFactual || sentencesResolved == sentencesTotal
	if len(unresolvedIDs) == 0 && fullyCited && citationsResolved > 0 {
		return verdict{
			Status:     domain.StatusVerified,
			Confidence: confidence,
			Citations:  citations,
		}
	}

	reason := verificationReason(unresolvedIDs, uncitedSentences, queryType)
	if sentencesResolved == 0 {
		return verdict{
			Status:     domain.StatusRejected,
			Confidence: confidence,
			Citations:  citations,
			Reason:     reason,
		}
	}
	return verdict{
		Status:     domain.StatusPartiallyVerified,
		Confidence: confidence,
		Citations:  citations,
		Reason:     reason,
	}
}

func groundingCoverage(queryType domain.QueryType, sentencesTotal, sentencesResolved, citationsTotal, citationsResolved int) float64 {
	if queryType == domain.QueryFactual {
		if sentencesTotal == 0 {
			return 0
		}
		return float64(sentencesResolved) / float64(sentencesTotal)
	}
	if citationsTotal == 0 {
		return 0
	}
	return float64(citationsResolved) / float64(citationsTotal)
}

func verificationReason(unresolvedIDs []string, uncitedSentences int, queryType domain.QueryType) string {
	var parts []string
	if len(unresolvedIDs) > 0 {
		parts = append(parts, fmt.Sprintf("citation mismatch: ids not in context: %s", strings.Join(unresolvedIDs, ", ")))
	}
	if uncitedSentences > 0 && queryType == domain.QueryFactual {
		parts = append(parts, fmt.Sprintf("uncited factual sentences: %d", uncitedSentences))
	}
	if len(parts) == 0 {
		parts = append(parts, "no grounded citations")
	}
	return strings.Join(parts, "; ")
}
