package usecase

import (
	"strings"

	"github.com/noteground/noteground/internal/core/domain"
)

var summarizationCues = []string{
	"summarize", "summarise", "summary", "overview", "recap", "tl;dr",
}

var factualLeads = []string{
	"what", "who", "whom", "whose", "when", "where", "which",
	"how many", "how much", "how long", "how old",
	"is ", "are ", "was ", "were ", "does ", "do ", "did ", "has ", "have ", "can ",
}

// classifyQuestion assigns one of the closed query categories used to select
// verification strictness. Unanswerable is never assigned here; it is reserved
// for the empty-context short circuit.
func classifyQuestion(question string) domain.QueryType {
	q := strings.ToLower(strings.TrimSpace(question))

	for _, cue := range summarizationCues {
		if strings.Contains(q, cue) {
			return domain.QuerySummarization
		}
	}
	for _, lead := range factualLeads {
		if strings.HasPrefix(q, lead) {
			return domain.QueryFactual
		}
	}
	return domain.QueryExploratory
}
