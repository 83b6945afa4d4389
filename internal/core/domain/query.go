package domain

type QueryType string

const (
	QueryFactual       QueryType = "factual"
	QuerySummarization QueryType = "summarization"
	QueryExploratory   QueryType = "exploratory"
	QueryUnanswerable  QueryType = "unanswerable"
)

type VerificationStatus string

const (
	StatusVerified          VerificationStatus = "verified"
	StatusPartiallyVerified VerificationStatus = "partially_verified"
	StatusRejected          VerificationStatus = "rejected"
)

// Citation attributes a claim in the answer to a note in the query's
// NoteContext. Resolved is false when the cited id does not exist in the
// context; such citations are kept and flagged, never silently dropped.
// A Citation is meaningless outside the NoteContext it was verified against.
type Citation struct {
	NoteID   string `json:"note_id"`
	Claim    string `json:"claim,omitempty"`
	Resolved bool   `json:"resolved"`
}

// QueryResult is constructed once per query and returned immutable. A rejected
// result still carries the raw answer text and the flagged citations so a
// caller can present unverified content instead of discarding it.
type QueryResult struct {
	AnswerText string             `json:"answer_text"`
	Citations  []Citation         `json:"citations"`
	QueryType  QueryType          `json:"query_type"`
	Confidence float64            `json:"confidence"`
	Status     VerificationStatus `json:"verification_status"`
	Reason     string             `json:"reason,omitempty"`
}

// ResolvedCitations returns only citations that resolved against the context.
func (r QueryResult) ResolvedCitations() []Citation {
	out := make([]Citation, 0, len(r.Citations))
	for _, c := range r.Citations {
		if c.Resolved {
			out = append(out, c)
		}
	}
	return out
}

// UnresolvedCitations returns citations referencing ids outside the context.
func (r QueryResult) UnresolvedCitations() []Citation {
	out := make([]Citation, 0)
	for _, c := range r.Citations {
		if !c.Resolved {
			out = append(out, c)
		}
	}
	return out
}
