package domain

// ContextSelector chooses candidate notes for one query: either an explicit
// id list or a tag filter with a limit. Ids take precedence when both are set.
type ContextSelector struct {
	NoteIDs []string `json:"note_ids,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

func (s ContextSelector) Explicit() bool {
	return len(s.NoteIDs) > 0
}

// TagExtraction is the normalized output of the tagging capability.
type TagExtraction struct {
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
}
