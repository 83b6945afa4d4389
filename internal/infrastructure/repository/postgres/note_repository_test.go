package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/noteground/noteground/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*NoteRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &NoteRepository{db: db}, mock, func() { _ = db.Close() }
}

func noteColumns() []string {
	return []string{"id", "content", "tags", "created_at", "updated_at"}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, content, tags").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDsFailsPerMissingID(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(noteColumns()).
		AddRow("a", "alpha", []byte(`["x"]`), now, now)
	mock.ExpectQuery("SELECT id, content, tags").
		WithArgs("a", "b").
		WillReturnRows(rows)

	_, err := repo.GetByIDs(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDsReturnsNotesInAscendingOrder(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(noteColumns()).
		AddRow("a", "alpha", []byte(`[]`), now, now).
		AddRow("b", "beta", []byte(`["x"]`), now, now)
	mock.ExpectQuery("SELECT id, content, tags").
		WithArgs("b", "a").
		WillReturnRows(rows)

	notes, err := repo.GetByIDs(context.Background(), []string{"b", "a"})
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if len(notes) != 2 || notes[0].ID != "a" || notes[1].ID != "b" {
		t.Fatalf("expected ascending id order, got %v", notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByTagsReturnsEmptySliceWhenNoMatch(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, content, tags").
		WithArgs(`["cooking"]`, 5).
		WillReturnRows(sqlmock.NewRows(noteColumns()))

	notes, err := repo.ListByTags(context.Background(), []string{"cooking"}, 5)
	if err != nil {
		t.Fatalf("ListByTags() error = %v", err)
	}
	if notes == nil || len(notes) != 0 {
		t.Fatalf("expected empty slice, got %v", notes)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSaveTagsReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE notes").
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveTags(context.Background(), "missing", []string{"tag"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
