package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/noteground/noteground/internal/core/domain"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *NoteRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS notes (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notes_tags ON notes USING GIN (tags);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) error {
	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO notes (id, content, tags, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5)
`, note.ID, note.Content, tagsJSON, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, content, tags, created_at, updated_at
FROM notes
WHERE id = $1
`, id)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNoteNotFound, "get note", fmt.Errorf("id %s", id))
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return note, nil
}

// GetByIDs resolves an explicit selection. Every requested id must exist;
// a missing one fails the whole lookup naming the id.
func (r *NoteRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Note, error) {
	if len(ids) == 0 {
		return []domain.Note{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
SELECT id, content, tags, created_at, updated_at
FROM notes
WHERE id IN (%s)
ORDER BY id ASC
`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes by ids: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	notes := make([]domain.Note, 0, len(ids))
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		found[note.ID] = true
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}

	for _, id := range ids {
		if !found[id] {
			return nil, domain.WrapError(domain.ErrNoteNotFound, "get notes", fmt.Errorf("id %s", id))
		}
	}
	return notes, nil
}

// ListByTags matches notes carrying any of the given tags; with no tags it
// lists most recent notes first. A selection with no matches is an empty
// slice, not an error.
func (r *NoteRepository) ListByTags(ctx context.Context, tags []string, limit int) ([]domain.Note, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		query string
		args  []any
	)
	if len(tags) == 0 {
		query = `
SELECT id, content, tags, created_at, updated_at
FROM notes
ORDER BY created_at DESC
LIMIT $1
`
		args = []any{limit}
	} else {
		conditions := make([]string, len(tags))
		args = make([]any, 0, len(tags)+1)
		for i, tag := range tags {
			conditions[i] = fmt.Sprintf("tags @> $%d::jsonb", i+1)
			tagJSON, err := json.Marshal([]string{tag})
			if err != nil {
				return nil, fmt.Errorf("marshal tag filter: %w", err)
			}
			args = append(args, string(tagJSON))
		}
		args = append(args, limit)
		query = fmt.Sprintf(`
SELECT id, content, tags, created_at, updated_at
FROM notes
WHERE %s
ORDER BY id ASC
LIMIT $%d
`, strings.Join(conditions, " OR "), len(tags)+1)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes by tags: %w", err)
	}
	defer rows.Close()

	notes := make([]domain.Note, 0, limit)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) SaveTags(ctx context.Context, id string, tags []string) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE notes
SET tags = $2, updated_at = $3
WHERE id = $1
`, id, tagsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update note tags: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNoteNotFound, "save tags", fmt.Errorf("id %s", id))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var note domain.Note
	var tagsRaw []byte

	if err := row.Scan(&note.ID, &note.Content, &tagsRaw, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tagsRaw, &note.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	return &note, nil
}
