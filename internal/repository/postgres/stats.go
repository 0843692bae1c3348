package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Totals are the headline counters of the admin dashboard.
type Totals struct {
	Tours    int
	Bookings int
	Users    int
	Revenue  float64
}

type StatsRepo struct {
	pool *pgxpool.Pool
}

func (r *StatsRepo) handle(ctx context.Context) DB {
	return conn(ctx, r.pool)
}

// Totals counts tours, bookings and users and sums the revenue of every
// booking that was not cancelled.
func (r *StatsRepo) Totals(ctx context.Context) (Totals, error) {
	const op = "postgres.StatsRepo.Totals"

	var t Totals
	err := r.handle(ctx).QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM tours),
			(SELECT COUNT(*) FROM bookings),
			(SELECT COUNT(*) FROM users),
			(SELECT COALESCE(SUM(total_price), 0)::float8 FROM bookings WHERE status <> 'cancelled')`,
	).Scan(&t.Tours, &t.Bookings, &t.Users, &t.Revenue)
	if err != nil {
		return Totals{}, wrapDBErr(op, err)
	}

	return t, nil
}
