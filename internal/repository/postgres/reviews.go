package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/repository"
)

const reviewColumns = `id, tour_id, user_id, user_name, user_avatar, rating, title, comment,
	helpful_votes, verified, created_at, updated_at`

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func (r *ReviewRepo) handle(ctx context.Context) DB {
	return conn(ctx, r.pool)
}

func reviewDest(rv *domain.Review) []any {
	return []any{
		&rv.ID, &rv.TourID, &rv.UserID, &rv.UserName, &rv.UserAvatar, &rv.Rating,
		&rv.Title, &rv.Comment, &rv.HelpfulVotes, &rv.Verified, &rv.CreatedAt, &rv.UpdatedAt,
	}
}

// ListByTour returns one page of a tour's reviews, newest first, and the
// total number of reviews the tour has.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - tourID: tour whose reviews to list.
//   - limit, offset: pagination parameters.
//
// Returns:
//   - []domain.Review: the requested page, possibly empty.
//   - int: total review count for the tour.
//   - error: wrapped database error.
func (r *ReviewRepo) ListByTour(
	ctx context.Context,
	tourID uuid.UUID,
	limit, offset int,
) ([]domain.Review, int, error) {
	const op = "postgres.ReviewRepo.ListByTour"

	db := r.handle(ctx)

	var total int
	if err := db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE tour_id = $1`,
		tourID,
	).Scan(&total); err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	rows, err := db.Query(ctx,
		`SELECT `+reviewColumns+`
		 FROM reviews
		 WHERE tour_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		tourID, limit, offset,
	)
	if err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(reviewDest(&rv)...); err != nil {
			return nil, 0, wrapDBErr(op, err)
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBErr(op, err)
	}

	return out, total, nil
}

// Get retrieves a review by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the review is not found.
func (r *ReviewRepo) Get(ctx context.Context, id uuid.UUID) (domain.Review, error) {
	const op = "postgres.ReviewRepo.Get"

	var rv domain.Review
	err := r.handle(ctx).QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`,
		id,
	).Scan(reviewDest(&rv)...)
	if err != nil {
		return domain.Review{}, wrapDBErr(op, err)
	}

	return rv, nil
}

// Create inserts rv.
//
// Returns:
//   - error: repository.ErrConflict if the user already reviewed the tour.
//   - error: repository.ErrNotFound if the tour does not exist.
func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	const op = "postgres.ReviewRepo.Create"

	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	now := time.Now().UTC()
	rv.CreatedAt, rv.UpdatedAt = now, now

	_, err := r.handle(ctx).Exec(ctx,
		`INSERT INTO reviews (`+reviewColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rv.ID, rv.TourID, rv.UserID, rv.UserName, rv.UserAvatar, rv.Rating,
		rv.Title, rv.Comment, rv.HelpfulVotes, rv.Verified, rv.CreatedAt, rv.UpdatedAt,
	)

	return wrapDBErr(op, err)
}

// Update stores the rating, title and comment of rv.
func (r *ReviewRepo) Update(ctx context.Context, rv *domain.Review) error {
	const op = "postgres.ReviewRepo.Update"

	rv.UpdatedAt = time.Now().UTC()

	tag, err := r.handle(ctx).Exec(ctx,
		`UPDATE reviews SET rating = $2, title = $3, comment = $4, updated_at = $5
		 WHERE id = $1`,
		rv.ID, rv.Rating, rv.Title, rv.Comment, rv.UpdatedAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.ReviewRepo.Delete"

	tag, err := r.handle(ctx).Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// RatingTotals returns the sum and count of a tour's review ratings.
func (r *ReviewRepo) RatingTotals(ctx context.Context, tourID uuid.UUID) (float64, int, error) {
	const op = "postgres.ReviewRepo.RatingTotals"

	var (
		sum   float64
		count int
	)
	err := r.handle(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(rating), 0)::float8, COUNT(*)
		 FROM reviews
		 WHERE tour_id = $1`,
		tourID,
	).Scan(&sum, &count)
	if err != nil {
		return 0, 0, wrapDBErr(op, err)
	}

	return sum, count, nil
}
