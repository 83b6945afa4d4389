package domain

import "time"

// Note is read-only from the answering engine's point of view: it is owned by
// the note store and immutable for the duration of one query.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteContext is the closed set of notes citations are verified against for a
// single query. Order is deterministic (ascending id) so repeated calls with
// the same selector reproduce the same prompt.
type NoteContext struct {
	Notes []Note
}

func NewNoteContext(notes []Note) NoteContext {
	return NoteContext{Notes: notes}
}

func (c NoteContext) Empty() bool {
	return len(c.Notes) == 0
}

func (c NoteContext) Contains(noteID string) bool {
	for _, note := range c.Notes {
		if note.ID == noteID {
			return true
		}
	}
	return false
}
