package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tour-go/internal/domain"
)

const bookingColumns = `b.id, b.tour_id, b.user_email, b.start_date, b.number_of_people,
	b.total_price, b.status, b.payment_status, COALESCE(b.payment_session_id, ''),
	b.created_at, b.updated_at`

type BookingRepo struct {
	pool *pgxpool.Pool
}

func (r *BookingRepo) handle(ctx context.Context) DB {
	return conn(ctx, r.pool)
}

func bookingDest(b *domain.Booking) []any {
	return []any{
		&b.ID, &b.TourID, &b.UserEmail, &b.StartDate, &b.NumberOfPeople,
		&b.TotalPrice, &b.Status, &b.PaymentStatus, &b.PaymentSessionID,
		&b.CreatedAt, &b.UpdatedAt,
	}
}

// Create inserts b, filling its ID and timestamps.
//
// Parameters:
//   - ctx: request-scoped context; joins the transaction it carries.
//   - b: booking to persist. Status and payment status are stored as given.
//
// Returns:
//   - error: wrapped database error.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.Create"

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	var session *string
	if b.PaymentSessionID != "" {
		session = &b.PaymentSessionID
	}

	_, err := r.handle(ctx).Exec(ctx,
		`INSERT INTO bookings (id, tour_id, user_email, start_date, number_of_people,
			total_price, status, payment_status, payment_session_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID, b.TourID, b.UserEmail, b.StartDate, b.NumberOfPeople,
		b.TotalPrice, string(b.Status), string(b.PaymentStatus), session, b.CreatedAt, b.UpdatedAt,
	)

	return wrapDBErr(op, err)
}

// Get retrieves a booking by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	var b domain.Booking
	err := r.handle(ctx).QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings b WHERE b.id = $1`,
		id,
	).Scan(bookingDest(&b)...)
	if err != nil {
		return domain.Booking{}, wrapDBErr(op, err)
	}

	return b, nil
}

// ListByTour returns every booking of a tour regardless of status.
func (r *BookingRepo) ListByTour(ctx context.Context, tourID uuid.UUID) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListByTour"

	rows, err := r.handle(ctx).Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings b
		 WHERE b.tour_id = $1
		 ORDER BY b.start_date`,
		tourID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(bookingDest(&b)...); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// ListByUser returns a user's bookings joined with their tours, newest
// first. Bookings whose tour no longer exists are left out.
func (r *BookingRepo) ListByUser(ctx context.Context, email string) ([]domain.BookingWithTour, error) {
	const op = "postgres.BookingRepo.ListByUser"

	rows, err := r.handle(ctx).Query(ctx,
		`SELECT `+bookingColumns+`, `+tourColumns+`
		 FROM bookings b
		 JOIN tours t ON t.id = b.tour_id
		 WHERE b.user_email = $1
		 ORDER BY b.created_at DESC`,
		email,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.BookingWithTour, 0)
	for rows.Next() {
		var bt domain.BookingWithTour
		t := &bt.Tour
		dest := append(bookingDest(&bt.Booking),
			&t.ID, &t.Name, &t.Description, &t.Price, &t.Duration, &t.MaxGroupSize,
			&t.Difficulty, &t.Rating, &t.NumReviews, &t.ImageURL, &t.Images, &t.Location,
			&t.StartDates, &t.Highlights, &t.CreatedAt, &t.UpdatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, bt)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// UpdateStatus sets the lifecycle status of a booking and returns the
// updated row.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
func (r *BookingRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.BookingStatus,
) (domain.Booking, error) {
	const op = "postgres.BookingRepo.UpdateStatus"

	var b domain.Booking
	err := r.handle(ctx).QueryRow(ctx,
		`UPDATE bookings b SET status = $2, updated_at = now()
		 WHERE b.id = $1
		 RETURNING `+bookingColumns,
		id, string(status),
	).Scan(bookingDest(&b)...)
	if err != nil {
		return domain.Booking{}, wrapDBErr(op, err)
	}

	return b, nil
}

// HasConfirmed reports whether the user holds a confirmed booking for the tour.
func (r *BookingRepo) HasConfirmed(ctx context.Context, email string, tourID uuid.UUID) (bool, error) {
	const op = "postgres.BookingRepo.HasConfirmed"

	var ok bool
	err := r.handle(ctx).QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE user_email = $1 AND tour_id = $2 AND status = 'confirmed'
		 )`,
		email, tourID,
	).Scan(&ok)
	if err != nil {
		return false, wrapDBErr(op, err)
	}

	return ok, nil
}

// ListSummaries returns bookings with their tour and user names, newest
// first. A limit of zero or less returns all of them.
func (r *BookingRepo) ListSummaries(ctx context.Context, limit int) ([]domain.BookingSummary, error) {
	const op = "postgres.BookingRepo.ListSummaries"

	q := `SELECT ` + bookingColumns + `,
			COALESCE(t.name, 'Unknown Tour'), COALESCE(u.name, 'Unknown User')
		 FROM bookings b
		 LEFT JOIN tours t ON t.id = b.tour_id
		 LEFT JOIN users u ON u.email = b.user_email
		 ORDER BY b.created_at DESC`

	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.handle(ctx).Query(ctx, q+` LIMIT $1`, limit)
	} else {
		rows, err = r.handle(ctx).Query(ctx, q)
	}
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.BookingSummary, 0)
	for rows.Next() {
		var s domain.BookingSummary
		dest := append(bookingDest(&s.Booking), &s.TourName, &s.UserName)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
