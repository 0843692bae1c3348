package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/tour-go/internal/auth"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/notify"
	"github.com/kirinyoku/tour-go/internal/repository"
	"github.com/kirinyoku/tour-go/internal/service"
	"github.com/kirinyoku/tour-go/internal/service/accounts"
	"github.com/kirinyoku/tour-go/internal/service/bookings"
	"github.com/kirinyoku/tour-go/internal/service/checkout"
	"github.com/kirinyoku/tour-go/internal/service/tours"
	"github.com/kirinyoku/tour-go/internal/uow/uowtest"
)

type memTours struct {
	byID map[uuid.UUID]domain.Tour
}

func (m *memTours) List(_ context.Context, _ domain.TourFilter) ([]domain.Tour, error) {
	return m.ListAll(context.Background())
}

func (m *memTours) ListAll(_ context.Context) ([]domain.Tour, error) {
	out := make([]domain.Tour, 0, len(m.byID))
	for _, t := range m.byID {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTours) Get(_ context.Context, id uuid.UUID) (domain.Tour, error) {
	t, ok := m.byID[id]
	if !ok {
		return domain.Tour{}, repository.ErrNotFound
	}
	return t, nil
}

func (m *memTours) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Tour, error) {
	return m.Get(ctx, id)
}

func (m *memTours) Create(_ context.Context, t *domain.Tour) error {
	t.ID = uuid.New()
	m.byID[t.ID] = *t
	return nil
}

func (m *memTours) Update(_ context.Context, t *domain.Tour) error {
	if _, ok := m.byID[t.ID]; !ok {
		return repository.ErrNotFound
	}
	m.byID[t.ID] = *t
	return nil
}

func (m *memTours) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memBookings struct {
	byID map[uuid.UUID]domain.Booking
}

func (m *memBookings) Create(_ context.Context, b *domain.Booking) error {
	b.ID = uuid.New()
	m.byID[b.ID] = *b
	return nil
}

func (m *memBookings) Get(_ context.Context, id uuid.UUID) (domain.Booking, error) {
	b, ok := m.byID[id]
	if !ok {
		return domain.Booking{}, repository.ErrNotFound
	}
	return b, nil
}

func (m *memBookings) ListByTour(_ context.Context, tourID uuid.UUID) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range m.byID {
		if b.TourID == tourID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) ListByUser(_ context.Context, email string) ([]domain.BookingWithTour, error) {
	var out []domain.BookingWithTour
	for _, b := range m.byID {
		if b.UserEmail == email {
			out = append(out, domain.BookingWithTour{Booking: b})
		}
	}
	return out, nil
}

func (m *memBookings) UpdateStatus(_ context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	b, ok := m.byID[id]
	if !ok {
		return domain.Booking{}, repository.ErrNotFound
	}
	b.Status = status
	m.byID[id] = b
	return b, nil
}

func (m *memBookings) ListSummaries(_ context.Context, _ int) ([]domain.BookingSummary, error) {
	return nil, nil
}

type memUsers struct {
	byID map[uuid.UUID]domain.User
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	u.ID = uuid.New()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) UpdateName(_ context.Context, id uuid.UUID, name string) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	u.Name = name
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) SetRole(_ context.Context, id uuid.UUID, role domain.Role) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	u.Role = role
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) ListWithStats(_ context.Context) ([]domain.UserWithStats, error) {
	return nil, nil
}

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (plainHasher) Verify(h, p string) bool       { return h == "h:"+p }

type denyAll struct{}

func (denyAll) Allow(context.Context, string) (bool, int64, time.Duration, error) {
	return false, 11, 1500 * time.Millisecond, nil
}

type testEnv struct {
	router   *gin.Engine
	issuer   *auth.Issuer
	tours    *memTours
	bookings *memBookings
	users    *memUsers
	tour     domain.Tour
	member   domain.User
	admin    domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		issuer:   auth.NewIssuer("router-secret", time.Hour),
		tours:    &memTours{byID: map[uuid.UUID]domain.Tour{}},
		bookings: &memBookings{byID: map[uuid.UUID]domain.Booking{}},
		users:    &memUsers{byID: map[uuid.UUID]domain.User{}},
	}

	env.tour = domain.Tour{
		Name:         "Alpine Trek",
		Price:        100,
		Duration:     5,
		MaxGroupSize: 4,
		Difficulty:   domain.DifficultyModerate,
		Rating:       4.5,
		StartDates:   []time.Time{time.Date(2030, 6, 10, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, env.tours.Create(context.Background(), &env.tour))

	env.member = domain.User{Name: "Mia", Email: "mia@example.com", Role: domain.RoleUser}
	require.NoError(t, env.users.Create(context.Background(), &env.member))
	env.admin = domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin}
	require.NoError(t, env.users.Create(context.Background(), &env.admin))

	env.router = env.build(nil)
	return env
}

func (e *testEnv) build(limiter *denyAll) *gin.Engine {
	svcs := &service.Services{
		Accounts: accounts.New(e.users, plainHasher{}, e.issuer, nil),
		Tours:    tours.New(e.tours, e.bookings, nil),
		Bookings: bookings.New(e.bookings, e.tours, e.users, nil, nil, &uowtest.Runner{}, bookings.Config{}),
	}
	if limiter != nil {
		svcs.Bookings = bookings.New(e.bookings, e.tours, e.users, nil, limiter, &uowtest.Runner{}, bookings.Config{})
	}
	svcs.Checkout = checkout.New(nil, e.tours, e.users, svcs.Bookings, nil, nil)

	health := func() notify.Stats { return notify.Stats{Delivered: 3} }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewRouter(svcs, e.issuer, health, logger)
}

func (e *testEnv) token(t *testing.T, u domain.User) string {
	t.Helper()
	tok, err := e.issuer.Issue(u)
	require.NoError(t, err)
	return tok.Value
}

func do(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	w := do(env.router, http.MethodGet, "/healthz", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Payments)
	assert.Equal(t, int64(3), resp.Notifications.Delivered)
}

func TestTours_ListAndGetWithETag(t *testing.T) {
	env := newTestEnv(t)

	w := do(env.router, http.MethodGet, "/tours", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=30", w.Header().Get("Cache-Control"))

	var list []domain.Tour
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	path := "/tours/" + env.tour.ID.String()
	w = do(env.router, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	w = do(env.router, http.MethodGet, path, nil, map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestTours_GetErrors(t *testing.T) {
	env := newTestEnv(t)

	w := do(env.router, http.MethodGet, "/tours/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(env.router, http.MethodGet, "/tours/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tour not found", resp.Error)
}

func TestAvailability(t *testing.T) {
	env := newTestEnv(t)
	path := "/tours/" + env.tour.ID.String() + "/availability"

	w := do(env.router, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(env.router, http.MethodGet, path+"?month=2030-06", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	var out []domain.DateAvailability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, 4, out[0].SpotsLeft)
	assert.True(t, out[0].Available)
}

func TestAuth_RequiredAndAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	w := do(env.router, http.MethodGet, "/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(env.router, http.MethodGet, "/bookings", nil, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(env.router, http.MethodGet, "/admin/tours", nil, bearer(env.token(t, env.member)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(env.router, http.MethodGet, "/admin/tours", nil, bearer(env.token(t, env.admin)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdmin_RoleReadFromStore(t *testing.T) {
	env := newTestEnv(t)

	// Token still claims admin after a demotion.
	tok := env.token(t, env.admin)
	_, err := env.users.SetRole(context.Background(), env.admin.ID, domain.RoleUser)
	require.NoError(t, err)

	w := do(env.router, http.MethodGet, "/admin/tours", nil, bearer(tok))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookings_Create(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, env.member)

	body := CreateBookingRequest{
		TourID:         env.tour.ID.String(),
		StartDate:      "2030-06-10",
		NumberOfPeople: 2,
		TotalPrice:     200,
	}
	w := do(env.router, http.MethodPost, "/bookings", body, bearer(tok))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var b domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, env.member.Email, b.UserEmail)

	w = do(env.router, http.MethodGet, "/bookings/"+b.ID.String(), nil, bearer(tok))
	assert.Equal(t, http.StatusOK, w.Code)

	other := domain.User{Name: "Oz", Email: "oz@example.com", Role: domain.RoleUser}
	require.NoError(t, env.users.Create(context.Background(), &other))
	w = do(env.router, http.MethodGet, "/bookings/"+b.ID.String(), nil, bearer(env.token(t, other)))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookings_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, env.member)

	cases := []struct {
		name string
		body any
		code int
		msg  string
	}{
		{
			name: "missing fields",
			body: map[string]any{"tourId": env.tour.ID.String()},
			code: http.StatusBadRequest,
			msg:  "missing required fields",
		},
		{
			name: "bad date",
			body: CreateBookingRequest{TourID: env.tour.ID.String(), StartDate: "June", NumberOfPeople: 1, TotalPrice: 100},
			code: http.StatusBadRequest,
			msg:  "invalid startDate",
		},
		{
			name: "over capacity",
			body: CreateBookingRequest{TourID: env.tour.ID.String(), StartDate: "2030-06-10", NumberOfPeople: 5, TotalPrice: 500},
			code: http.StatusBadRequest,
			msg:  bookings.ErrExceedsCapacity.Msg,
		},
		{
			name: "price mismatch",
			body: CreateBookingRequest{TourID: env.tour.ID.String(), StartDate: "2030-06-10", NumberOfPeople: 2, TotalPrice: 150},
			code: http.StatusBadRequest,
			msg:  bookings.ErrPriceMismatch.Msg,
		},
		{
			name: "unknown tour",
			body: CreateBookingRequest{TourID: uuid.NewString(), StartDate: "2030-06-10", NumberOfPeople: 1, TotalPrice: 100},
			code: http.StatusNotFound,
			msg:  "tour not found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(env.router, http.MethodPost, "/bookings", tc.body, bearer(tok))
			require.Equal(t, tc.code, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.msg, resp.Error)
		})
	}
}

func TestBookings_RateLimitedSetsRetryAfter(t *testing.T) {
	env := newTestEnv(t)
	router := env.build(&denyAll{})

	body := CreateBookingRequest{
		TourID:         env.tour.ID.String(),
		StartDate:      "2030-06-10",
		NumberOfPeople: 1,
		TotalPrice:     100,
	}
	w := do(router, http.MethodPost, "/bookings", body, bearer(env.token(t, env.member)))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}

func TestBookings_OwnerCancels(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t, env.member)

	b := domain.Booking{
		TourID:         env.tour.ID,
		UserEmail:      env.member.Email,
		StartDate:      env.tour.StartDates[0],
		NumberOfPeople: 1,
		TotalPrice:     100,
		Status:         domain.BookingPending,
		PaymentStatus:  domain.PaymentUnpaid,
	}
	require.NoError(t, env.bookings.Create(context.Background(), &b))

	path := "/bookings/" + b.ID.String()

	w := do(env.router, http.MethodPatch, path, UpdateStatusRequest{Status: "bogus"}, bearer(tok))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(env.router, http.MethodPatch, path, UpdateStatusRequest{Status: "cancelled"}, bearer(tok))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.BookingCancelled, env.bookings.byID[b.ID].Status)

	// Only pending bookings can be changed by their owner.
	w = do(env.router, http.MethodPatch, path, UpdateStatusRequest{Status: "confirmed"}, bearer(tok))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(env.router, http.MethodPatch, "/admin"+path, UpdateStatusRequest{Status: "confirmed"}, bearer(env.token(t, env.admin)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_ReturnsSession(t *testing.T) {
	env := newTestEnv(t)

	w := do(env.router, http.MethodPost, "/auth/signup", SignupRequest{
		Name:     "Noor",
		Email:    "noor@example.com",
		Password: "hunter22",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(env.router, http.MethodPost, "/auth/login", LoginRequest{Email: "noor@example.com", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(env.router, http.MethodPost, "/auth/login", LoginRequest{Email: "noor@example.com", Password: "hunter22"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var sess accounts.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	require.NotEmpty(t, sess.Token.Value)

	w = do(env.router, http.MethodGet, "/users/me", nil, bearer(sess.Token.Value))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "noor@example.com")
}

func TestCheckout_DisabledWithoutProcessor(t *testing.T) {
	env := newTestEnv(t)

	body := CheckoutRequest{
		TourID:         env.tour.ID.String(),
		StartDate:      "2030-06-10",
		NumberOfPeople: 1,
	}
	w := do(env.router, http.MethodPost, "/checkout/sessions", body, bearer(env.token(t, env.member)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(env.router, http.MethodPost, "/webhooks/stripe", map[string]string{"type": "ping"},
		map[string]string{"Stripe-Signature": "t=1,v1=abc"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "payments are not configured", resp.Error)
}
