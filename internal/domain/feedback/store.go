package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/rana-ox/testing-d1/internal/errs"
	"github.com/rana-ox/testing-d1/internal/infra/dbx"
)

// QueryTimeoutDuration bounds every statement issued by the repository.
var QueryTimeoutDuration = time.Second * 5

type Store interface {
	List(ctx context.Context, pageSlug string) ([]Entry, error)
	Create(ctx context.Context, draft *Draft) (*Entry, error)
	Ping(ctx context.Context) error
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) *Repository {
	return &Repository{db: q}
}

// List returns up to MaxListLimit entries for a page, newest first. A page
// without feedback yields an empty, non-nil slice.
func (r *Repository) List(ctx context.Context, pageSlug string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, username, rating, comment, created_at
        FROM feedback
        WHERE page_slug = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, pageSlug, MaxListLimit)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, fmt.Errorf("failed to query feedback: %w", err))
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e := Entry{PageSlug: pageSlug}
		if err := rows.Scan(&e.ID, &e.Username, &e.Rating, &e.Comment, &e.CreatedAt); err != nil {
			return nil, errs.Wrap(errs.KindStorage, fmt.Errorf("failed to scan feedback row: %w", err))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindStorage, fmt.Errorf("failed to read feedback rows: %w", err))
	}
	return entries, nil
}

// Create inserts a single row; the database assigns id and created_at.
func (r *Repository) Create(ctx context.Context, draft *Draft) (*Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        INSERT INTO feedback (page_slug, username, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	e := &Entry{
		PageSlug: draft.PageSlug,
		Username: draft.Username,
		Rating:   draft.Rating,
		Comment:  draft.Comment,
	}
	err := r.db.QueryRow(ctx, query,
		draft.PageSlug,
		draft.Username,
		draft.Rating,
		draft.Comment,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, fmt.Errorf("failed to insert feedback: %w", err))
	}
	return e, nil
}

// Ping checks that the database answers queries.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if _, err := r.db.Exec(ctx, "SELECT 1"); err != nil {
		return errs.Wrap(errs.KindStorage, fmt.Errorf("failed to ping database: %w", err))
	}
	return nil
}
