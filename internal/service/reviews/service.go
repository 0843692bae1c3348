package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/rating"
	"github.com/kirinyoku/tour-go/internal/repository"
	"github.com/kirinyoku/tour-go/internal/uow"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

type ReviewStore interface {
	ListByTour(ctx context.Context, tourID uuid.UUID, limit, offset int) ([]domain.Review, int, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Review, error)
	Create(ctx context.Context, rv *domain.Review) error
	Update(ctx context.Context, rv *domain.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	RatingTotals(ctx context.Context, tourID uuid.UUID) (float64, int, error)
}

type TourStore interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Tour, error)
	SetRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error
}

type BookingChecker interface {
	HasConfirmed(ctx context.Context, email string, tourID uuid.UUID) (bool, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// TourInvalidator drops cached copies of a tour.
type TourInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID)
}

type Service struct {
	reviews  ReviewStore
	tours    TourStore
	bookings BookingChecker
	users    UserReader
	cache    TourInvalidator
	uow      uow.Runner
}

func New(
	reviews ReviewStore,
	tours TourStore,
	bookings BookingChecker,
	users UserReader,
	cache TourInvalidator,
	runner uow.Runner,
) *Service {
	return &Service{
		reviews:  reviews,
		tours:    tours,
		bookings: bookings,
		users:    users,
		cache:    cache,
		uow:      runner,
	}
}

// List returns one page of a tour's reviews, newest first. page and limit
// default to 1 and 10; limit is capped at 50.
func (s *Service) List(ctx context.Context, tourID uuid.UUID, page, limit int) (domain.ReviewPage, error) {
	const op = "service.reviews.List"

	if tourID == uuid.Nil {
		return domain.ReviewPage{}, fmt.Errorf("%s:%w", op, ErrTourIDRequired)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	items, total, err := s.reviews.ListByTour(ctx, tourID, limit, (page-1)*limit)
	if err != nil {
		return domain.ReviewPage{}, fmt.Errorf("%s:%w", op, err)
	}

	pages := (total + limit - 1) / limit

	return domain.ReviewPage{
		Reviews: items,
		Total:   total,
		Page:    page,
		Pages:   pages,
		HasMore: page < pages,
	}, nil
}

// Input carries the writable fields of a review. Nil fields are left
// unchanged on update and are required on create.
type Input struct {
	Rating  *int
	Title   *string
	Comment *string
}

func validate(rv domain.Review) error {
	switch {
	case !rating.ValidRating(rv.Rating):
		return ErrInvalidRating
	case rv.Title == "":
		return ErrTitleRequired
	case utf8.RuneCountInString(rv.Title) > 100:
		return ErrTitleTooLong
	case rv.Comment == "":
		return ErrCommentRequired
	case utf8.RuneCountInString(rv.Comment) > 1000:
		return ErrCommentTooLong
	}
	return nil
}

func (in Input) apply(rv *domain.Review) {
	if in.Rating != nil {
		rv.Rating = *in.Rating
	}
	if in.Title != nil {
		rv.Title = strings.TrimSpace(*in.Title)
	}
	if in.Comment != nil {
		rv.Comment = strings.TrimSpace(*in.Comment)
	}
}

// Create stores actor's review of a tour and refreshes the tour rating in
// the same transaction.
//
// Parameters:
//   - ctx: request-scoped context.
//   - actor: the reviewing user.
//   - tourID: reviewed tour.
//   - in: rating, title and comment; all required.
//
// Returns:
//   - domain.Review: the stored review; Verified is set when actor holds a
//     confirmed booking for the tour.
//   - error: reviews.ErrTourNotFound if the tour does not exist.
//   - error: reviews.ErrAlreadyReviewed if actor already reviewed the tour.
func (s *Service) Create(ctx context.Context, actor domain.Principal, tourID uuid.UUID, in Input) (domain.Review, error) {
	const op = "service.reviews.Create"

	if tourID == uuid.Nil {
		return domain.Review{}, fmt.Errorf("%s:%w", op, ErrTourIDRequired)
	}

	rv := domain.Review{TourID: tourID, UserID: actor.UserID, UserName: actor.Name}
	in.apply(&rv)
	if err := validate(rv); err != nil {
		return domain.Review{}, fmt.Errorf("%s:%w", op, err)
	}

	err := s.uow.Do(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		if _, err := s.tours.Get(ctx, tourID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTourNotFound
			}
			return err
		}

		if s.users != nil {
			if u, err := s.users.GetByID(ctx, actor.UserID); err == nil {
				rv.UserName = u.Name
				rv.UserAvatar = u.Avatar
			}
		}

		verified, err := s.bookings.HasConfirmed(ctx, actor.Email, tourID)
		if err != nil {
			return err
		}
		rv.Verified = verified

		if err := s.reviews.Create(ctx, &rv); err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return ErrAlreadyReviewed
			case errors.Is(err, repository.ErrNotFound):
				return ErrTourNotFound
			}
			return err
		}

		return s.recompute(ctx, tourID, after)
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("%s:%w", op, err)
	}

	return rv, nil
}

// Update changes actor's own review and refreshes the tour rating.
func (s *Service) Update(ctx context.Context, actor domain.Principal, id uuid.UUID, in Input) (domain.Review, error) {
	const op = "service.reviews.Update"

	var rv domain.Review

	err := s.uow.Do(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		var err error
		rv, err = s.reviews.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if rv.UserID != actor.UserID {
			return ErrForbidden
		}

		in.apply(&rv)
		if err := validate(rv); err != nil {
			return err
		}

		if err := s.reviews.Update(ctx, &rv); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		return s.recompute(ctx, rv.TourID, after)
	})
	if err != nil {
		return domain.Review{}, fmt.Errorf("%s:%w", op, err)
	}

	return rv, nil
}

// Delete removes a review owned by actor, or any review when actor may
// moderate reviews, and refreshes the tour rating.
func (s *Service) Delete(ctx context.Context, actor domain.Principal, id uuid.UUID) error {
	const op = "service.reviews.Delete"

	err := s.uow.Do(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		rv, err := s.reviews.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		if rv.UserID != actor.UserID && !actor.Can(domain.CapModerateReviews) {
			return ErrForbidden
		}

		if err := s.reviews.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		return s.recompute(ctx, rv.TourID, after)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// recompute stores the tour's fresh review aggregate and schedules a cache
// invalidation for after the commit. A tour deleted meanwhile is skipped.
func (s *Service) recompute(ctx context.Context, tourID uuid.UUID, after func(uow.AfterCommit)) error {
	sum, count, err := s.reviews.RatingTotals(ctx, tourID)
	if err != nil {
		return err
	}

	agg := rating.FromSum(sum, count)
	if err := s.tours.SetRating(ctx, tourID, agg.Rating, agg.NumReviews); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if s.cache != nil {
		after(func(ctx context.Context) {
			s.cache.Invalidate(ctx, tourID)
		})
	}

	return nil
}
