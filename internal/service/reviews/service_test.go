package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/tour-go/internal/apperr"
	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/repository"
	"github.com/kirinyoku/tour-go/internal/uow/uowtest"
)

type fakeReviews struct {
	byID   map[uuid.UUID]domain.Review
	offset int
	limit  int
}

func (f *fakeReviews) ListByTour(_ context.Context, tourID uuid.UUID, limit, offset int) ([]domain.Review, int, error) {
	f.limit, f.offset = limit, offset
	var all []domain.Review
	for _, rv := range f.byID {
		if rv.TourID == tourID {
			all = append(all, rv)
		}
	}
	end := min(offset+limit, len(all))
	if offset > len(all) {
		return []domain.Review{}, len(all), nil
	}
	return all[offset:end], len(all), nil
}

func (f *fakeReviews) Get(_ context.Context, id uuid.UUID) (domain.Review, error) {
	rv, ok := f.byID[id]
	if !ok {
		return domain.Review{}, repository.ErrNotFound
	}
	return rv, nil
}

func (f *fakeReviews) Create(_ context.Context, rv *domain.Review) error {
	for _, existing := range f.byID {
		if existing.UserID == rv.UserID && existing.TourID == rv.TourID {
			return repository.ErrConflict
		}
	}
	rv.ID = uuid.New()
	f.byID[rv.ID] = *rv
	return nil
}

func (f *fakeReviews) Update(_ context.Context, rv *domain.Review) error {
	f.byID[rv.ID] = *rv
	return nil
}

func (f *fakeReviews) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeReviews) RatingTotals(_ context.Context, tourID uuid.UUID) (float64, int, error) {
	var sum, count int
	for _, rv := range f.byID {
		if rv.TourID == tourID {
			sum += rv.Rating
			count++
		}
	}
	return float64(sum), count, nil
}

type fakeTours map[uuid.UUID]domain.Tour

func (f fakeTours) Get(_ context.Context, id uuid.UUID) (domain.Tour, error) {
	t, ok := f[id]
	if !ok {
		return domain.Tour{}, repository.ErrNotFound
	}
	return t, nil
}

func (f fakeTours) SetRating(_ context.Context, id uuid.UUID, r float64, n int) error {
	t, ok := f[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Rating, t.NumReviews = r, n
	f[id] = t
	return nil
}

type confirmedSet map[string]bool

func (c confirmedSet) HasConfirmed(_ context.Context, email string, _ uuid.UUID) (bool, error) {
	return c[email], nil
}

type fakeUsers map[uuid.UUID]domain.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	u, ok := f[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

type invalidations []uuid.UUID

func (i *invalidations) Invalidate(_ context.Context, id uuid.UUID) {
	*i = append(*i, id)
}

var (
	ana   = domain.Principal{UserID: uuid.New(), Email: "ana@example.com", Name: "Ana", Role: domain.RoleUser}
	bo    = domain.Principal{UserID: uuid.New(), Email: "bo@example.com", Name: "Bo", Role: domain.RoleUser}
	admin = domain.Principal{UserID: uuid.New(), Email: "root@example.com", Name: "Root", Role: domain.RoleAdmin}
)

type fixture struct {
	svc     *Service
	reviews *fakeReviews
	tours   fakeTours
	tourID  uuid.UUID
	cleared *invalidations
}

func newFixture() *fixture {
	tourID := uuid.New()
	tours := fakeTours{tourID: {ID: tourID, Name: "Fjords", Rating: domain.DefaultRating}}
	reviews := &fakeReviews{byID: map[uuid.UUID]domain.Review{}}
	users := fakeUsers{ana.UserID: {ID: ana.UserID, Name: "Ana K", Avatar: "https://img.example/ana.png"}}
	cleared := &invalidations{}

	return &fixture{
		svc:     New(reviews, tours, confirmedSet{ana.Email: true}, users, cleared, &uowtest.Runner{}),
		reviews: reviews,
		tours:   tours,
		tourID:  tourID,
		cleared: cleared,
	}
}

func input(r int, title, comment string) Input {
	return Input{Rating: &r, Title: &title, Comment: &comment}
}

func TestCreateRecomputesRating(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, ana, f.tourID, input(5, "Great", "Loved it"))
	require.NoError(t, err)
	assert.True(t, rv.Verified)
	assert.Equal(t, "Ana K", rv.UserName)
	assert.Equal(t, "https://img.example/ana.png", rv.UserAvatar)

	rv2, err := f.svc.Create(ctx, bo, f.tourID, input(4, "Good", "Nice views"))
	require.NoError(t, err)
	assert.False(t, rv2.Verified)
	assert.Equal(t, "Bo", rv2.UserName)

	assert.Equal(t, 4.5, f.tours[f.tourID].Rating)
	assert.Equal(t, 2, f.tours[f.tourID].NumReviews)
	assert.Equal(t, []uuid.UUID{f.tourID, f.tourID}, []uuid.UUID(*f.cleared))
}

func TestCreateRoundsAverage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	carl := domain.Principal{UserID: uuid.New(), Email: "carl@example.com"}

	for _, p := range []struct {
		who domain.Principal
		r   int
	}{{ana, 5}, {bo, 4}, {carl, 4}} {
		_, err := f.svc.Create(ctx, p.who, f.tourID, input(p.r, "t", "c"))
		require.NoError(t, err)
	}

	assert.Equal(t, 4.3, f.tours[f.tourID].Rating)
	assert.Equal(t, 3, f.tours[f.tourID].NumReviews)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, ana, f.tourID, input(6, "t", "c"))
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = f.svc.Create(ctx, ana, f.tourID, input(0, "t", "c"))
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = f.svc.Create(ctx, ana, f.tourID, input(3, "  ", "c"))
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = f.svc.Create(ctx, ana, f.tourID, Input{})
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))

	_, err = f.svc.Create(ctx, ana, uuid.New(), input(3, "t", "c"))
	assert.ErrorIs(t, err, ErrTourNotFound)

	_, err = f.svc.Create(ctx, ana, f.tourID, input(3, "t", "c"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, ana, f.tourID, input(4, "again", "c"))
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	assert.Equal(t, apperr.InvalidArgument, apperr.KindOf(err))
}

func TestUpdateOwnerOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, ana, f.tourID, input(2, "Meh", "Rainy"))
	require.NoError(t, err)

	four := 4
	_, err = f.svc.Update(ctx, bo, rv.ID, Input{Rating: &four})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Update(ctx, admin, rv.ID, Input{Rating: &four})
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Update(ctx, ana, rv.ID, Input{Rating: &four})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "Meh", got.Title)
	assert.Equal(t, 4.0, f.tours[f.tourID].Rating)

	_, err = f.svc.Update(ctx, ana, uuid.New(), Input{Rating: &four})
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestDeleteSoleReviewResetsRating(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, ana, f.tourID, input(1, "Bad", "Lost luggage"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.tours[f.tourID].Rating)

	assert.ErrorIs(t, f.svc.Delete(ctx, bo, rv.ID), ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, ana, rv.ID))
	assert.Equal(t, domain.DefaultRating, f.tours[f.tourID].Rating)
	assert.Equal(t, 0, f.tours[f.tourID].NumReviews)

	assert.ErrorIs(t, f.svc.Delete(ctx, ana, rv.ID), ErrReviewNotFound)
}

func TestAdminCanDeleteAnyReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rv, err := f.svc.Create(ctx, bo, f.tourID, input(3, "Ok", "Fine"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, admin, rv.ID))
	assert.Empty(t, f.reviews.byID)
}

func TestListPaging(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		u := domain.Principal{UserID: uuid.New(), Email: uuid.NewString() + "@example.com"}
		_, err := f.svc.Create(ctx, u, f.tourID, input(5, "t", "c"))
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, f.tourID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.True(t, page.HasMore)
	assert.Len(t, page.Reviews, 10)

	page, err = f.svc.List(ctx, f.tourID, 2, 10)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Len(t, page.Reviews, 2)
	assert.Equal(t, 10, f.reviews.offset)

	_, err = f.svc.List(ctx, f.tourID, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, f.reviews.limit)

	_, err = f.svc.List(ctx, uuid.Nil, 1, 10)
	assert.ErrorIs(t, err, ErrTourIDRequired)
}
