package bookings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/availability"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/notify"
	"github.com/kirinyoku/tour-go/internal/repository"
	"github.com/kirinyoku/tour-go/internal/service/ratelimit"
	"github.com/kirinyoku/tour-go/internal/uow"
)

const unknownTour = "Unknown Tour"

type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	ListByTour(ctx context.Context, tourID uuid.UUID) ([]domain.Booking, error)
	ListByUser(ctx context.Context, email string) ([]domain.BookingWithTour, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
	ListSummaries(ctx context.Context, limit int) ([]domain.BookingSummary, error)
}

type TourReader interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Tour, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Tour, error)
}

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Notifier accepts booking messages for asynchronous delivery.
type Notifier interface {
	Dispatch(msg notify.Message) bool
}

type Config struct {
	// StrictCapacity re-checks remaining spots on the departure inside a
	// serializable transaction that locks the tour row.
	StrictCapacity bool
}

type Service struct {
	bookings BookingStore
	tours    TourReader
	users    UserReader
	notifier Notifier
	limiter  ratelimit.Limiter
	uow      uow.Runner
	cfg      Config
}

func New(
	bookings BookingStore,
	tours TourReader,
	users UserReader,
	notifier Notifier,
	limiter ratelimit.Limiter,
	runner uow.Runner,
	cfg Config,
) *Service {
	return &Service{
		bookings: bookings,
		tours:    tours,
		users:    users,
		notifier: notifier,
		limiter:  limiter,
		uow:      runner,
		cfg:      cfg,
	}
}

// Input is a booking request as submitted by a user.
type Input struct {
	TourID         uuid.UUID
	StartDate      time.Time
	NumberOfPeople int
	TotalPrice     float64
}

// priceTolerance is the largest accepted difference between the submitted
// total and price*people, plus slack for float noise.
const priceTolerance = 0.01 + 1e-9

// PriceMatches reports whether total equals price*people within one cent.
func PriceMatches(price float64, people int, total float64) bool {
	return math.Abs(total-price*float64(people)) <= priceTolerance
}

// Create books a tour departure for actor.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: the authenticated user making the booking.
//   - in: tour, departure date, party size and the price the client saw.
//
// Returns:
//   - domain.Booking: the stored booking, pending and unpaid.
//   - error: bookings.ErrTourNotFound if the tour does not exist.
//   - error: bookings.ErrExceedsCapacity if the party is larger than the tour allows.
//   - error: bookings.ErrPriceMismatch if the total does not match the tour price.
//   - error: bookings.ErrNotEnoughSpots in strict mode when the departure is full.
func (s *Service) Create(ctx context.Context, actor domain.Principal, in Input) (domain.Booking, error) {
	const op = "service.bookings.Create"

	if err := ratelimit.Check(ctx, s.limiter, "booking:"+actor.UserID.String()); err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	if in.NumberOfPeople < 1 {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrInvalidPeople)
	}
	if in.StartDate.IsZero() {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrStartDateRequired)
	}

	run := s.uow.Do
	getTour := s.tours.Get
	if s.cfg.StrictCapacity {
		run = s.uow.DoSerializable
		getTour = s.tours.GetForUpdate
	}

	var b domain.Booking

	err := run(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		t, err := getTour(ctx, in.TourID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTourNotFound
			}
			return err
		}

		if in.NumberOfPeople > t.MaxGroupSize {
			return ErrExceedsCapacity
		}

		if !PriceMatches(t.Price, in.NumberOfPeople, in.TotalPrice) {
			return ErrPriceMismatch
		}

		if s.cfg.StrictCapacity {
			existing, err := s.bookings.ListByTour(ctx, t.ID)
			if err != nil {
				return err
			}
			if in.NumberOfPeople > availability.SpotsLeft(t, existing, in.StartDate) {
				return ErrNotEnoughSpots
			}
		}

		b = domain.Booking{
			TourID:         t.ID,
			UserEmail:      actor.Email,
			StartDate:      availability.NormalizeDate(in.StartDate),
			NumberOfPeople: in.NumberOfPeople,
			TotalPrice:     in.TotalPrice,
			Status:         domain.BookingPending,
			PaymentStatus:  domain.PaymentUnpaid,
		}
		if err := s.bookings.Create(ctx, &b); err != nil {
			return err
		}

		created := b
		after(func(context.Context) {
			s.notify(notify.KindConfirmation, created, t, actor.Name)
		})

		return nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// PaidInput is a booking whose payment the processor already confirmed.
type PaidInput struct {
	SessionID      string
	StartDate      time.Time
	NumberOfPeople int
	AmountPaid     float64
}

// CreatePaid stores a confirmed and paid booking for user on tour. Capacity
// is not re-validated on this path.
func (s *Service) CreatePaid(ctx context.Context, tour domain.Tour, user domain.User, in PaidInput) (domain.Booking, error) {
	const op = "service.bookings.CreatePaid"

	b := domain.Booking{
		TourID:           tour.ID,
		UserEmail:        user.Email,
		StartDate:        availability.NormalizeDate(in.StartDate),
		NumberOfPeople:   in.NumberOfPeople,
		TotalPrice:       in.AmountPaid,
		Status:           domain.BookingConfirmed,
		PaymentStatus:    domain.PaymentPaid,
		PaymentSessionID: in.SessionID,
	}

	err := s.uow.Do(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		if err := s.bookings.Create(ctx, &b); err != nil {
			return err
		}

		created := b
		after(func(context.Context) {
			s.notify(notify.KindConfirmation, created, tour, user.Name)
		})

		return nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	return b, nil
}

// SetStatus moves a booking to status. Owners may only confirm or cancel a
// pending booking; anyone who can manage bookings may set any status.
//
// Returns:
//   - error: bookings.ErrInvalidStatus if status is not a known value.
//   - error: bookings.ErrBookingNotFound if the booking does not exist.
//   - error: bookings.ErrForbidden if actor neither owns nor manages the booking.
//   - error: bookings.ErrInvalidTransition for a disallowed self-service change.
func (s *Service) SetStatus(
	ctx context.Context,
	actor domain.Principal,
	id uuid.UUID,
	status domain.BookingStatus,
) (domain.Booking, error) {
	const op = "service.bookings.SetStatus"

	if !status.Valid() {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrInvalidStatus)
	}

	var updated domain.Booking

	err := s.uow.Do(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		cur, err := s.bookings.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		if !actor.Can(domain.CapManageBookings) {
			if cur.UserEmail != actor.Email {
				return ErrForbidden
			}
			if cur.Status != domain.BookingPending ||
				(status != domain.BookingConfirmed && status != domain.BookingCancelled) {
				return ErrInvalidTransition
			}
		}

		updated, err = s.bookings.UpdateStatus(ctx, id, status)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrBookingNotFound
			}
			return err
		}

		var kind notify.Kind
		switch {
		case status == domain.BookingCancelled:
			kind = notify.KindCancellation
		case status == domain.BookingConfirmed && cur.Status == domain.BookingPending:
			kind = notify.KindConfirmation
		default:
			return nil
		}

		b := updated
		after(func(ctx context.Context) {
			s.notifyLookup(ctx, kind, b)
		})

		return nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	return updated, nil
}

// Get returns a booking visible to actor.
func (s *Service) Get(ctx context.Context, actor domain.Principal, id uuid.UUID) (domain.Booking, error) {
	const op = "service.bookings.Get"

	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}
		return domain.Booking{}, fmt.Errorf("%s:%w", op, err)
	}

	if b.UserEmail != actor.Email && !actor.Can(domain.CapManageBookings) {
		return domain.Booking{}, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	return b, nil
}

// ListMine returns actor's bookings, newest first, each with its tour.
// Bookings whose tour was deleted are left out.
func (s *Service) ListMine(ctx context.Context, actor domain.Principal) ([]domain.BookingWithTour, error) {
	const op = "service.bookings.ListMine"

	out, err := s.bookings.ListByUser(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ListAll returns every booking with its tour and user names.
func (s *Service) ListAll(ctx context.Context, actor domain.Principal) ([]domain.BookingSummary, error) {
	const op = "service.bookings.ListAll"

	if !actor.Can(domain.CapManageBookings) {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	out, err := s.bookings.ListSummaries(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (s *Service) notify(kind notify.Kind, b domain.Booking, t domain.Tour, userName string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Dispatch(notify.NewBookingMessage(kind, b, t, userName))
}

// notifyLookup resolves the tour and user behind b before notifying. Missing
// records fall back to placeholder names rather than suppressing the email.
func (s *Service) notifyLookup(ctx context.Context, kind notify.Kind, b domain.Booking) {
	t, err := s.tours.Get(ctx, b.TourID)
	if err != nil {
		t = domain.Tour{ID: b.TourID, Name: unknownTour}
	}

	var name string
	if s.users != nil {
		if u, err := s.users.GetByEmail(ctx, b.UserEmail); err == nil {
			name = u.Name
		}
	}

	s.notify(kind, b, t, name)
}
