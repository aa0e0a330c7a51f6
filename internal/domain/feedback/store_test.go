package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/rana-ox/testing-d1/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewRepository(mock), mock
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newMockRepository(t)

	newer := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(`SELECT id, username, rating, comment, created_at\s+FROM feedback\s+WHERE page_slug = \$1\s+ORDER BY created_at DESC`).
		WithArgs("blog-1", MaxListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "rating", "comment", "created_at"}).
			AddRow(int64(2), "ann", 5, "Great post!", newer).
			AddRow(int64(1), "", 3, "meh", older))

	entries, err := repo.List(context.Background(), "blog-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, Entry{ID: 2, PageSlug: "blog-1", Username: "ann", Rating: 5, Comment: "Great post!", CreatedAt: newer}, entries[0])
	assert.Equal(t, int64(1), entries[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListEmpty(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM feedback`).
		WithArgs("nobody-here", MaxListLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "rating", "comment", "created_at"}))

	entries, err := repo.List(context.Background(), "nobody-here")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM feedback`).
		WithArgs("index", MaxListLimit).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.List(context.Background(), "index")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindStorage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate(t *testing.T) {
	repo, mock := newMockRepository(t)

	createdAt := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO feedback \(page_slug, username, rating, comment\)`).
		WithArgs("blog-1", "ann", 5, "Great post!").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), createdAt))

	entry, err := repo.Create(context.Background(), &Draft{
		PageSlug: "blog-1",
		Username: "ann",
		Rating:   5,
		Comment:  "Great post!",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), entry.ID)
	assert.Equal(t, createdAt, entry.CreatedAt)
	assert.Equal(t, "Great post!", entry.Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateFailure(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO feedback`).
		WithArgs("index", "", 9, "x").
		WillReturnError(errors.New(`new row violates check constraint "feedback_rating_check"`))

	_, err := repo.Create(context.Background(), &Draft{PageSlug: "index", Rating: 9, Comment: "x"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindStorage))
	assert.Contains(t, err.Error(), "failed to insert feedback")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryPing(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	assert.NoError(t, repo.Ping(context.Background()))

	mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("no route to host"))
	assert.True(t, errs.Is(repo.Ping(context.Background()), errs.KindStorage))

	assert.NoError(t, mock.ExpectationsWereMet())
}
