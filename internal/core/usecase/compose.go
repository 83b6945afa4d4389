package usecase

import (
	"fmt"
	"strings"

	"github.com/noteground/noteground/internal/core/domain"
)

// composeAnswerPrompt renders the fixed instruction template for one query.
// Pure function: identical question and context produce an identical prompt.
func composeAnswerPrompt(question string, noteCtx domain.NoteContext) string {
	var notes strings.Builder
	for _, note := range noteCtx.Notes {
		notes.WriteString(fmt.Sprintf("[%s]\n%s\n\n", note.ID, note.Content))
	}

	return fmt.Sprintf(`You answer questions using only the notes below.
Rules:
- Use only facts stated in the notes. Do not use outside knowledge.
- End every factual sentence with a citation marker naming the supporting note id, like [%s]. Separate multiple ids with commas.
- Cite only ids that appear in the notes section. Never invent an id.
- If the notes do not contain the answer, say so directly.
- Finish with a separate last line: Confidence: <number between 0 and 1>

Question:
%s

Notes:
%s`, exampleNoteID(noteCtx), question, notes.String())
}

func exampleNoteID(noteCtx domain.NoteContext) string {
	if len(noteCtx.Notes) > 0 {
		return noteCtx.Notes[0].ID
	}
	return "note-id"
}
