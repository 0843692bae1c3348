package admin

import (
	"context"
	"fmt"

	"github.com/kirinyoku/tour-go/internal/domain"
	postgres "github.com/kirinyoku/tour-go/internal/repository/postgres"
)

// recentBookings is how many bookings the dashboard lists.
const recentBookings = 10

type TotalsReader interface {
	Totals(ctx context.Context) (postgres.Totals, error)
}

type BookingSummaries interface {
	ListSummaries(ctx context.Context, limit int) ([]domain.BookingSummary, error)
}

type Service struct {
	totals   TotalsReader
	bookings BookingSummaries
}

func New(totals TotalsReader, bookings BookingSummaries) *Service {
	return &Service{totals: totals, bookings: bookings}
}

// Stats returns the dashboard counters and the most recent bookings.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: caller; must be allowed to view stats.
//
// Returns:
//   - domain.AdminStats: totals plus the latest bookings with tour and user names.
//   - error: admin.ErrForbidden for callers without the capability.
func (s *Service) Stats(ctx context.Context, actor domain.Principal) (domain.AdminStats, error) {
	const op = "service.admin.Stats"

	if !actor.Can(domain.CapViewStats) {
		return domain.AdminStats{}, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	t, err := s.totals.Totals(ctx)
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("%s:%w", op, err)
	}

	recent, err := s.bookings.ListSummaries(ctx, recentBookings)
	if err != nil {
		return domain.AdminStats{}, fmt.Errorf("%s:%w", op, err)
	}

	return domain.AdminStats{
		TotalTours:     t.Tours,
		TotalBookings:  t.Bookings,
		TotalUsers:     t.Users,
		TotalRevenue:   t.Revenue,
		RecentBookings: recent,
	}, nil
}
