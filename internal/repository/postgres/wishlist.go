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

type WishlistRepo struct {
	pool *pgxpool.Pool
}

func (r *WishlistRepo) handle(ctx context.Context) DB {
	return conn(ctx, r.pool)
}

// ListByUser returns a user's wishlist joined with the tours, newest first.
// Entries whose tour is gone are not returned; see PurgeOrphans.
func (r *WishlistRepo) ListByUser(ctx context.Context, email string) ([]domain.WishlistEntry, error) {
	const op = "postgres.WishlistRepo.ListByUser"

	rows, err := r.handle(ctx).Query(ctx,
		`SELECT w.id, w.user_email, w.tour_id, w.created_at, `+tourColumns+`
		 FROM wishlist w
		 JOIN tours t ON t.id = w.tour_id
		 WHERE w.user_email = $1
		 ORDER BY w.created_at DESC`,
		email,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.WishlistEntry, 0)
	for rows.Next() {
		var e domain.WishlistEntry
		t := &e.Tour
		if err := rows.Scan(
			&e.ID, &e.UserEmail, &e.TourID, &e.CreatedAt,
			&t.ID, &t.Name, &t.Description, &t.Price, &t.Duration, &t.MaxGroupSize,
			&t.Difficulty, &t.Rating, &t.NumReviews, &t.ImageURL, &t.Images, &t.Location,
			&t.StartDates, &t.Highlights, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// PurgeOrphans deletes the user's entries that point at deleted tours and
// returns how many were removed.
func (r *WishlistRepo) PurgeOrphans(ctx context.Context, email string) (int64, error) {
	const op = "postgres.WishlistRepo.PurgeOrphans"

	tag, err := r.handle(ctx).Exec(ctx,
		`DELETE FROM wishlist w
		 WHERE w.user_email = $1
		   AND NOT EXISTS (SELECT 1 FROM tours t WHERE t.id = w.tour_id)`,
		email,
	)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return tag.RowsAffected(), nil
}

// Add inserts a wishlist entry.
//
// Returns:
//   - error: repository.ErrConflict if the tour is already on the list.
func (r *WishlistRepo) Add(ctx context.Context, item *domain.WishlistItem) error {
	const op = "postgres.WishlistRepo.Add"

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now().UTC()

	_, err := r.handle(ctx).Exec(ctx,
		`INSERT INTO wishlist (id, user_email, tour_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		item.ID, item.UserEmail, item.TourID, item.CreatedAt,
	)

	return wrapDBErr(op, err)
}

// Remove deletes the entry for (email, tourID).
//
// Returns:
//   - error: repository.ErrNotFound if there was no such entry.
func (r *WishlistRepo) Remove(ctx context.Context, email string, tourID uuid.UUID) error {
	const op = "postgres.WishlistRepo.Remove"

	tag, err := r.handle(ctx).Exec(ctx,
		`DELETE FROM wishlist WHERE user_email = $1 AND tour_id = $2`,
		email, tourID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
