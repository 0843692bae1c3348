package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/payment"
	"github.com/kirinyoku/tour-go/internal/repository"
	redisrepo "github.com/kirinyoku/tour-go/internal/repository/redis"
	"github.com/kirinyoku/tour-go/internal/service/bookings"
	"github.com/kirinyoku/tour-go/internal/service/ratelimit"
)

// Processor is the hosted payment page provider.
type Processor interface {
	CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*payment.PaymentConfirmed, error)
}

type TourReader interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Tour, error)
}

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// PaidBooker records bookings whose payment has been confirmed.
type PaidBooker interface {
	CreatePaid(ctx context.Context, tour domain.Tour, user domain.User, in bookings.PaidInput) (domain.Booking, error)
}

type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (redisrepo.IdemState, string, error)
	SaveResult(ctx context.Context, key string, jsonPayload string) error
	Release(ctx context.Context, key string) error
}

type Service struct {
	processor Processor
	tours     TourReader
	users     UserReader
	bookings  PaidBooker
	idem      IdempotencyStore
	limiter   ratelimit.Limiter
}

// New returns the checkout service. A nil processor disables payments;
// idem and limiter may be nil too.
func New(
	processor Processor,
	tours TourReader,
	users UserReader,
	bookings PaidBooker,
	idem IdempotencyStore,
	limiter ratelimit.Limiter,
) *Service {
	return &Service{
		processor: processor,
		tours:     tours,
		users:     users,
		bookings:  bookings,
		idem:      idem,
		limiter:   limiter,
	}
}

// Enabled reports whether a payment processor is configured.
func (s *Service) Enabled() bool {
	return s.processor != nil
}

type SessionInput struct {
	TourID         uuid.UUID
	StartDate      time.Time
	NumberOfPeople int
}

// CreateSession opens a hosted checkout for actor. Requests repeated with
// the same idempotency key get the first session back.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: paying user; the checkout is prefilled with their email.
//   - in: tour, departure date and party size.
//   - idemKey: optional client-supplied idempotency key.
//
// Returns:
//   - payment.CheckoutSession: the session ID and hosted page URL.
//   - error: checkout.ErrPaymentsDisabled if no processor is configured.
//   - error: checkout.ErrTourNotFound if the tour does not exist.
//   - error: checkout.ErrInProgress while an identical request is still running.
func (s *Service) CreateSession(
	ctx context.Context,
	actor domain.Principal,
	in SessionInput,
	idemKey string,
) (payment.CheckoutSession, error) {
	const op = "service.checkout.CreateSession"

	if s.processor == nil {
		return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, ErrPaymentsDisabled)
	}

	if err := ratelimit.Check(ctx, s.limiter, "checkout:"+actor.UserID.String()); err != nil {
		return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, err)
	}

	if in.NumberOfPeople < 1 {
		return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, ErrInvalidPeople)
	}
	if in.StartDate.IsZero() {
		return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, ErrStartDateMissing)
	}

	var key string
	if s.idem != nil && idemKey != "" {
		key = redisrepo.KeyIdemCheckout(actor.UserID, idemKey)

		state, payload, err := s.idem.Claim(ctx, key)
		if err != nil {
			return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, err)
		}

		switch state {
		case redisrepo.IdemReplay:
			var sess payment.CheckoutSession
			if err := json.Unmarshal([]byte(payload), &sess); err != nil {
				return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, err)
			}
			return sess, nil
		case redisrepo.IdemInProgress:
			return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, ErrInProgress)
		}
	}

	sess, err := s.createSession(ctx, actor, in)
	if err != nil {
		if key != "" {
			_ = s.idem.Release(ctx, key)
		}
		return payment.CheckoutSession{}, fmt.Errorf("%s:%w", op, err)
	}

	if key != "" {
		if b, err := json.Marshal(sess); err == nil {
			_ = s.idem.SaveResult(ctx, key, string(b))
		}
	}

	return sess, nil
}

func (s *Service) createSession(ctx context.Context, actor domain.Principal, in SessionInput) (payment.CheckoutSession, error) {
	t, err := s.tours.Get(ctx, in.TourID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return payment.CheckoutSession{}, ErrTourNotFound
		}
		return payment.CheckoutSession{}, err
	}

	return s.processor.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		TourID:         t.ID,
		TourName:       t.Name,
		TourImage:      t.ImageURL,
		Description:    fmt.Sprintf("%d day tour in %s", t.Duration, t.Location),
		UnitPrice:      t.Price,
		StartDate:      in.StartDate,
		NumberOfPeople: in.NumberOfPeople,
		CustomerEmail:  actor.Email,
	})
}

// HandleWebhook verifies a processor callback and, for a completed
// checkout, records the paid booking. Other events are acknowledged with a
// nil booking. Deliveries are not deduplicated; the processor session ID is
// stored on the booking.
//
// Returns:
//   - *domain.Booking: the created booking, or nil for ignored events.
//   - error: checkout.ErrMissingSignature or checkout.ErrInvalidSignature.
//   - error: checkout.ErrUserNotFound or checkout.ErrTourNotFound when the
//     payment references records that no longer exist.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (*domain.Booking, error) {
	const op = "service.checkout.HandleWebhook"

	if s.processor == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrPaymentsDisabled)
	}
	if signature == "" {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingSignature)
	}

	pc, err := s.processor.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return nil, fmt.Errorf("%s:%w", op, ErrInvalidSignature)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if pc == nil {
		return nil, nil
	}

	u, err := s.users.GetByEmail(ctx, pc.CustomerEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	t, err := s.tours.Get(ctx, pc.TourID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTourNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	b, err := s.bookings.CreatePaid(ctx, t, u, bookings.PaidInput{
		SessionID:      pc.SessionID,
		StartDate:      pc.StartDate,
		NumberOfPeople: pc.NumberOfPeople,
		AmountPaid:     pc.AmountPaid,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &b, nil
}
