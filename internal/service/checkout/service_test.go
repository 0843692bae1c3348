package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/tour-go/internal/apperr"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/payment"
	"github.com/kirinyoku/tour-go/internal/repository"
	redisrepo "github.com/kirinyoku/tour-go/internal/repository/redis"
	"github.com/kirinyoku/tour-go/internal/service/bookings"
)

type fakeProcessor struct {
	sessions  int
	last      payment.CheckoutRequest
	confirmed *payment.PaymentConfirmed
	parseErr  error
	createErr error
}

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	if f.createErr != nil {
		return payment.CheckoutSession{}, f.createErr
	}
	f.sessions++
	f.last = req
	return payment.CheckoutSession{ID: "cs_" + uuid.NewString(), URL: "https://pay.example/cs"}, nil
}

func (f *fakeProcessor) ParseWebhook(_ []byte, _ string) (*payment.PaymentConfirmed, error) {
	return f.confirmed, f.parseErr
}

type fakeTours map[uuid.UUID]domain.Tour

func (f fakeTours) Get(_ context.Context, id uuid.UUID) (domain.Tour, error) {
	t, ok := f[id]
	if !ok {
		return domain.Tour{}, repository.ErrNotFound
	}
	return t, nil
}

type fakeUsers map[string]domain.User

func (f fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := f[email]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

type paidRecorder struct {
	calls []bookings.PaidInput
}

func (p *paidRecorder) CreatePaid(_ context.Context, t domain.Tour, u domain.User, in bookings.PaidInput) (domain.Booking, error) {
	p.calls = append(p.calls, in)
	return domain.Booking{
		ID:               uuid.New(),
		TourID:           t.ID,
		UserEmail:        u.Email,
		NumberOfPeople:   in.NumberOfPeople,
		TotalPrice:       in.AmountPaid,
		Status:           domain.BookingConfirmed,
		PaymentStatus:    domain.PaymentPaid,
		PaymentSessionID: in.SessionID,
	}, nil
}

type memIdem struct {
	locked  map[string]bool
	results map[string]string
}

func newMemIdem() *memIdem {
	return &memIdem{locked: map[string]bool{}, results: map[string]string{}}
}

func (m *memIdem) Claim(_ context.Context, key string) (redisrepo.IdemState, string, error) {
	if r, ok := m.results[key]; ok {
		return redisrepo.IdemReplay, r, nil
	}
	if m.locked[key] {
		return redisrepo.IdemInProgress, "", nil
	}
	m.locked[key] = true
	return redisrepo.IdemAcquired, "", nil
}

func (m *memIdem) SaveResult(_ context.Context, key, payload string) error {
	delete(m.locked, key)
	m.results[key] = payload
	return nil
}

func (m *memIdem) Release(_ context.Context, key string) error {
	delete(m.locked, key)
	return nil
}

var ana = domain.Principal{UserID: uuid.New(), Email: "ana@example.com", Name: "Ana", Role: domain.RoleUser}

func sampleTour() domain.Tour {
	return domain.Tour{ID: uuid.New(), Name: "Fjords", Price: 250, Duration: 3, Location: "Bergen", ImageURL: "https://img.example/f.jpg"}
}

func TestCreateSession(t *testing.T) {
	tour := sampleTour()
	proc := &fakeProcessor{}
	svc := New(proc, fakeTours{tour.ID: tour}, nil, nil, nil, nil)

	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	sess, err := svc.CreateSession(context.Background(), ana, SessionInput{TourID: tour.ID, StartDate: start, NumberOfPeople: 2}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	assert.Equal(t, 250.0, proc.last.UnitPrice)
	assert.Equal(t, 2, proc.last.NumberOfPeople)
	assert.Equal(t, ana.Email, proc.last.CustomerEmail)
	assert.Equal(t, "3 day tour in Bergen", proc.last.Description)
	assert.Equal(t, start, proc.last.StartDate)
}

func TestCreateSessionErrors(t *testing.T) {
	tour := sampleTour()
	ctx := context.Background()
	start := time.Now()

	_, err := New(nil, fakeTours{}, nil, nil, nil, nil).CreateSession(ctx, ana, SessionInput{}, "")
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
	assert.Equal(t, apperr.Unavailable, apperr.KindOf(err))

	svc := New(&fakeProcessor{}, fakeTours{tour.ID: tour}, nil, nil, nil, nil)

	_, err = svc.CreateSession(ctx, ana, SessionInput{TourID: uuid.New(), StartDate: start, NumberOfPeople: 1}, "")
	assert.ErrorIs(t, err, ErrTourNotFound)

	_, err = svc.CreateSession(ctx, ana, SessionInput{TourID: tour.ID, StartDate: start}, "")
	assert.ErrorIs(t, err, ErrInvalidPeople)

	_, err = svc.CreateSession(ctx, ana, SessionInput{TourID: tour.ID, NumberOfPeople: 1}, "")
	assert.ErrorIs(t, err, ErrStartDateMissing)
}

func TestCreateSessionIdempotent(t *testing.T) {
	tour := sampleTour()
	proc := &fakeProcessor{}
	idem := newMemIdem()
	svc := New(proc, fakeTours{tour.ID: tour}, nil, nil, idem, nil)
	ctx := context.Background()
	in := SessionInput{TourID: tour.ID, StartDate: time.Now(), NumberOfPeople: 1}

	first, err := svc.CreateSession(ctx, ana, in, "k1")
	require.NoError(t, err)
	again, err := svc.CreateSession(ctx, ana, in, "k1")
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, 1, proc.sessions)

	idem.locked[redisrepo.KeyIdemCheckout(ana.UserID, "k2")] = true
	_, err = svc.CreateSession(ctx, ana, in, "k2")
	assert.ErrorIs(t, err, ErrInProgress)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestCreateSessionReleasesKeyOnFailure(t *testing.T) {
	tour := sampleTour()
	proc := &fakeProcessor{createErr: errors.New("processor down")}
	idem := newMemIdem()
	svc := New(proc, fakeTours{tour.ID: tour}, nil, nil, idem, nil)
	in := SessionInput{TourID: tour.ID, StartDate: time.Now(), NumberOfPeople: 1}

	_, err := svc.CreateSession(context.Background(), ana, in, "k1")
	require.Error(t, err)
	assert.Empty(t, idem.locked)
	assert.Empty(t, idem.results)
}

func TestHandleWebhook(t *testing.T) {
	tour := sampleTour()
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	proc := &fakeProcessor{confirmed: &payment.PaymentConfirmed{
		SessionID:      "cs_1",
		TourID:         tour.ID,
		StartDate:      start,
		NumberOfPeople: 2,
		CustomerEmail:  ana.Email,
		AmountPaid:     500,
	}}
	paid := &paidRecorder{}
	users := fakeUsers{ana.Email: {ID: ana.UserID, Email: ana.Email, Name: "Ana"}}
	svc := New(proc, fakeTours{tour.ID: tour}, users, paid, nil, nil)

	b, err := svc.HandleWebhook(context.Background(), []byte(`{}`), "t=1,v1=abc")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, "cs_1", b.PaymentSessionID)
	require.Len(t, paid.calls, 1)
	assert.Equal(t, 500.0, paid.calls[0].AmountPaid)
}

func TestHandleWebhookErrors(t *testing.T) {
	tour := sampleTour()
	ctx := context.Background()
	pc := &payment.PaymentConfirmed{TourID: tour.ID, CustomerEmail: "ghost@example.com", NumberOfPeople: 1}

	svc := New(&fakeProcessor{}, fakeTours{}, fakeUsers{}, &paidRecorder{}, nil, nil)
	_, err := svc.HandleWebhook(ctx, nil, "")
	assert.ErrorIs(t, err, ErrMissingSignature)

	svc = New(&fakeProcessor{parseErr: payment.ErrInvalidSignature}, fakeTours{}, fakeUsers{}, &paidRecorder{}, nil, nil)
	_, err = svc.HandleWebhook(ctx, nil, "sig")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	svc = New(&fakeProcessor{}, fakeTours{}, fakeUsers{}, &paidRecorder{}, nil, nil)
	b, err := svc.HandleWebhook(ctx, nil, "sig")
	require.NoError(t, err)
	assert.Nil(t, b)

	svc = New(&fakeProcessor{confirmed: pc}, fakeTours{tour.ID: tour}, fakeUsers{}, &paidRecorder{}, nil, nil)
	_, err = svc.HandleWebhook(ctx, nil, "sig")
	assert.ErrorIs(t, err, ErrUserNotFound)

	users := fakeUsers{pc.CustomerEmail: {Email: pc.CustomerEmail}}
	svc = New(&fakeProcessor{confirmed: pc}, fakeTours{}, users, &paidRecorder{}, nil, nil)
	_, err = svc.HandleWebhook(ctx, nil, "sig")
	assert.ErrorIs(t, err, ErrTourNotFound)
}
