package tours

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/availability"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/repository"
)

const (
	defaultMaxPrice    = 999999
	defaultMaxDuration = 999
)

type TourStore interface {
	List(ctx context.Context, f domain.TourFilter) ([]domain.Tour, error)
	ListAll(ctx context.Context) ([]domain.Tour, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Tour, error)
	Create(ctx context.Context, t *domain.Tour) error
	Update(ctx context.Context, t *domain.Tour) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BookingLister interface {
	ListByTour(ctx context.Context, tourID uuid.UUID) ([]domain.Booking, error)
}

type Cache interface {
	Get(ctx context.Context, id uuid.UUID, load func(ctx context.Context) (domain.Tour, error)) (domain.Tour, error)
	Invalidate(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	tours    TourStore
	bookings BookingLister
	cache    Cache
}

// New returns the tour service. cache may be nil.
func New(tours TourStore, bookings BookingLister, cache Cache) *Service {
	return &Service{tours: tours, bookings: bookings, cache: cache}
}

// ListParams are the raw query parameters of the tour listing.
type ListParams struct {
	Search      string
	Difficulty  string
	MinPrice    *float64
	MaxPrice    *float64
	MinDuration *int
	MaxDuration *int
	SortBy      string
}

// Filter validates p and fills defaults.
func (p ListParams) Filter() (domain.TourFilter, error) {
	f := domain.TourFilter{
		Search:      strings.TrimSpace(p.Search),
		MinPrice:    0,
		MaxPrice:    defaultMaxPrice,
		MinDuration: 0,
		MaxDuration: defaultMaxDuration,
		SortBy:      domain.SortRating,
	}

	switch d := strings.ToLower(strings.TrimSpace(p.Difficulty)); d {
	case "", "all":
	default:
		if !domain.Difficulty(d).Valid() {
			return f, fmt.Errorf("%w: difficulty %q", ErrInvalidFilter, p.Difficulty)
		}
		f.Difficulty = domain.Difficulty(d)
	}

	if p.MinPrice != nil {
		f.MinPrice = *p.MinPrice
	}
	if p.MaxPrice != nil {
		f.MaxPrice = *p.MaxPrice
	}
	if p.MinDuration != nil {
		f.MinDuration = *p.MinDuration
	}
	if p.MaxDuration != nil {
		f.MaxDuration = *p.MaxDuration
	}

	switch s := domain.TourSort(p.SortBy); s {
	case "":
	case domain.SortPriceAsc, domain.SortPriceDesc, domain.SortRating, domain.SortName:
		f.SortBy = s
	default:
		return f, fmt.Errorf("%w: sortBy %q", ErrInvalidFilter, p.SortBy)
	}

	return f, nil
}

// List returns the tours matching p.
//
// Parameters:
//   - ctx: request-scoped context.
//   - p: raw filter parameters; missing bounds take their defaults.
//
// Returns:
//   - []domain.Tour: matching tours.
//   - error: tours.ErrInvalidFilter for an unknown difficulty or sort order.
func (s *Service) List(ctx context.Context, p ListParams) ([]domain.Tour, error) {
	const op = "service.tours.List"

	f, err := p.Filter()
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	out, err := s.tours.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Get returns a tour, through the cache when one is configured.
//
// Returns:
//   - error: tours.ErrTourNotFound if the tour does not exist.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	const op = "service.tours.Get"

	load := func(ctx context.Context) (domain.Tour, error) {
		return s.tours.Get(ctx, id)
	}

	var (
		t   domain.Tour
		err error
	)
	if s.cache != nil {
		t, err = s.cache.Get(ctx, id, load)
	} else {
		t, err = load(ctx)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Tour{}, fmt.Errorf("%s:%w", op, ErrTourNotFound)
		}
		return domain.Tour{}, fmt.Errorf("%s:%w", op, err)
	}

	return t, nil
}

// Availability computes the remaining capacity of every departure of the
// tour in month. The result is never cached.
//
// Parameters:
//   - ctx: request-scoped context.
//   - id: tour to inspect.
//   - month: YYYY-MM, YYYY-MM-DD or RFC3339; only year and month are used.
//
// Returns:
//   - []domain.DateAvailability: one entry per departure in the month.
//   - error: tours.ErrMonthRequired or tours.ErrInvalidMonth for a bad month.
//   - error: tours.ErrTourNotFound if the tour does not exist.
func (s *Service) Availability(ctx context.Context, id uuid.UUID, month string) ([]domain.DateAvailability, error) {
	const op = "service.tours.Availability"

	if strings.TrimSpace(month) == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrMonthRequired)
	}

	m, err := availability.ParseMonth(month)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidMonth)
	}

	t, err := s.tours.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTourNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	bookings, err := s.bookings.ListByTour(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return availability.Compute(t, bookings, m), nil
}

// Invalidate drops the cached copy of a tour. Errors are ignored: the
// entry expires on its own.
func (s *Service) Invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
	}
}
