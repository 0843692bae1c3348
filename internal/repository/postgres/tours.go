package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/repository"
)

const tourColumns = `t.id, t.name, t.description, t.price, t.duration, t.max_group_size,
	t.difficulty, t.rating, t.num_reviews, t.image_url, t.images, t.location,
	t.start_dates, t.highlights, t.created_at, t.updated_at`

type TourRepo struct {
	pool *pgxpool.Pool
}

func (r *TourRepo) handle(ctx context.Context) DB {
	return conn(ctx, r.pool)
}

func scanTour(row pgx.Row, t *domain.Tour) error {
	return row.Scan(
		&t.ID, &t.Name, &t.Description, &t.Price, &t.Duration, &t.MaxGroupSize,
		&t.Difficulty, &t.Rating, &t.NumReviews, &t.ImageURL, &t.Images, &t.Location,
		&t.StartDates, &t.Highlights, &t.CreatedAt, &t.UpdatedAt,
	)
}

func collectTours(rows pgx.Rows) ([]domain.Tour, error) {
	defer rows.Close()

	out := make([]domain.Tour, 0)
	for rows.Next() {
		var t domain.Tour
		if err := scanTour(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// List returns the tours matching f.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - f: search, difficulty, price and duration bounds plus the sort order.
//
// Returns:
//   - []domain.Tour: matching tours, possibly empty.
//   - error: wrapped database error.
func (r *TourRepo) List(ctx context.Context, f domain.TourFilter) ([]domain.Tour, error) {
	const op = "postgres.TourRepo.List"

	where := []string{
		"t.price BETWEEN $1 AND $2",
		"t.duration BETWEEN $3 AND $4",
	}
	args := []any{f.MinPrice, f.MaxPrice, f.MinDuration, f.MaxDuration}

	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(t.name ILIKE $%d OR t.location ILIKE $%d OR t.description ILIKE $%d)", n, n, n,
		))
	}

	if f.Difficulty != "" {
		args = append(args, string(f.Difficulty))
		where = append(where, fmt.Sprintf("t.difficulty = $%d", len(args)))
	}

	q := `SELECT ` + tourColumns + `
		 FROM tours t
		 WHERE ` + strings.Join(where, " AND ") + `
		 ORDER BY ` + tourOrder(f.SortBy)

	rows, err := r.handle(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collectTours(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func tourOrder(s domain.TourSort) string {
	switch s {
	case domain.SortPriceAsc:
		return "t.price ASC, t.name ASC"
	case domain.SortPriceDesc:
		return "t.price DESC, t.name ASC"
	case domain.SortName:
		return "t.name ASC"
	default:
		return "t.rating DESC, t.name ASC"
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListAll returns every tour, newest first.
func (r *TourRepo) ListAll(ctx context.Context) ([]domain.Tour, error) {
	const op = "postgres.TourRepo.ListAll"

	rows, err := r.handle(ctx).Query(ctx,
		`SELECT `+tourColumns+`
		 FROM tours t
		 ORDER BY t.created_at DESC`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collectTours(rows)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Get retrieves a tour by its ID.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - id: unique identifier of the tour to retrieve.
//
// Returns:
//   - domain.Tour: the tour when found.
//   - error: repository.ErrNotFound if the tour is not found.
func (r *TourRepo) Get(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	const op = "postgres.TourRepo.Get"

	var t domain.Tour
	err := scanTour(r.handle(ctx).QueryRow(ctx,
		`SELECT `+tourColumns+` FROM tours t WHERE t.id = $1`,
		id,
	), &t)
	if err != nil {
		return domain.Tour{}, wrapDBErr(op, err)
	}

	return t, nil
}

// GetForUpdate is Get with the row locked until the surrounding
// transaction ends. Outside a transaction the lock is released immediately.
func (r *TourRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	const op = "postgres.TourRepo.GetForUpdate"

	var t domain.Tour
	err := scanTour(r.handle(ctx).QueryRow(ctx,
		`SELECT `+tourColumns+` FROM tours t WHERE t.id = $1 FOR UPDATE`,
		id,
	), &t)
	if err != nil {
		return domain.Tour{}, wrapDBErr(op, err)
	}

	return t, nil
}

// Create inserts t, filling its ID and timestamps when unset.
//
// Returns:
//   - error: repository.ErrConflict if a tour with the same name exists.
func (r *TourRepo) Create(ctx context.Context, t *domain.Tour) error {
	const op = "postgres.TourRepo.Create"

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Rating == 0 && t.NumReviews == 0 {
		t.Rating = domain.DefaultRating
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now

	_, err := r.handle(ctx).Exec(ctx,
		`INSERT INTO tours (id, name, description, price, duration, max_group_size,
			difficulty, rating, num_reviews, image_url, images, location,
			start_dates, highlights, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.Name, t.Description, t.Price, t.Duration, t.MaxGroupSize,
		string(t.Difficulty), t.Rating, t.NumReviews, t.ImageURL, nonNil(t.Images), t.Location,
		t.StartDates, nonNil(t.Highlights), t.CreatedAt, t.UpdatedAt,
	)

	return wrapDBErr(op, err)
}

// Update overwrites the editable fields of t. Rating fields are owned by
// SetRating and left untouched.
//
// Returns:
//   - error: repository.ErrNotFound if the tour does not exist.
//   - error: repository.ErrConflict if the new name is taken.
func (r *TourRepo) Update(ctx context.Context, t *domain.Tour) error {
	const op = "postgres.TourRepo.Update"

	t.UpdatedAt = time.Now().UTC()

	tag, err := r.handle(ctx).Exec(ctx,
		`UPDATE tours SET name = $2, description = $3, price = $4, duration = $5,
			max_group_size = $6, difficulty = $7, image_url = $8, images = $9,
			location = $10, start_dates = $11, highlights = $12, updated_at = $13
		 WHERE id = $1`,
		t.ID, t.Name, t.Description, t.Price, t.Duration,
		t.MaxGroupSize, string(t.Difficulty), t.ImageURL, nonNil(t.Images),
		t.Location, t.StartDates, nonNil(t.Highlights), t.UpdatedAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// SetRating stores the cached review aggregate of a tour.
func (r *TourRepo) SetRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error {
	const op = "postgres.TourRepo.SetRating"

	tag, err := r.handle(ctx).Exec(ctx,
		`UPDATE tours SET rating = $2, num_reviews = $3 WHERE id = $1`,
		id, rating, numReviews,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// Delete removes a tour. Its reviews go with it; bookings and wishlist
// entries stay and are filtered out on read.
func (r *TourRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.TourRepo.Delete"

	tag, err := r.handle(ctx).Exec(ctx, `DELETE FROM tours WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}

// DeleteAll wipes the tours table.
func (r *TourRepo) DeleteAll(ctx context.Context) (int64, error) {
	const op = "postgres.TourRepo.DeleteAll"

	tag, err := r.handle(ctx).Exec(ctx, `DELETE FROM tours`)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
