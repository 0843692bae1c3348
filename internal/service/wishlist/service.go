package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/repository"
)

type Store interface {
	ListByUser(ctx context.Context, email string) ([]domain.WishlistEntry, error)
	PurgeOrphans(ctx context.Context, email string) (int64, error)
	Add(ctx context.Context, item *domain.WishlistItem) error
	Remove(ctx context.Context, email string, tourID uuid.UUID) error
}

type TourReader interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Tour, error)
}

type Service struct {
	items Store
	tours TourReader
}

func New(items Store, tours TourReader) *Service {
	return &Service{items: items, tours: tours}
}

// List returns actor's wishlist with each tour, newest first. Entries whose
// tour has been deleted are removed first.
func (s *Service) List(ctx context.Context, actor domain.Principal) ([]domain.WishlistEntry, error) {
	const op = "service.wishlist.List"

	if _, err := s.items.PurgeOrphans(ctx, actor.Email); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	out, err := s.items.ListByUser(ctx, actor.Email)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Add saves a tour to actor's wishlist.
//
// Returns:
//   - error: wishlist.ErrTourNotFound if the tour does not exist.
//   - error: wishlist.ErrAlreadyInList if the tour is already saved.
func (s *Service) Add(ctx context.Context, actor domain.Principal, tourID uuid.UUID) (domain.WishlistItem, error) {
	const op = "service.wishlist.Add"

	if tourID == uuid.Nil {
		return domain.WishlistItem{}, fmt.Errorf("%s:%w", op, ErrTourIDRequired)
	}

	if _, err := s.tours.Get(ctx, tourID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.WishlistItem{}, fmt.Errorf("%s:%w", op, ErrTourNotFound)
		}
		return domain.WishlistItem{}, fmt.Errorf("%s:%w", op, err)
	}

	item := domain.WishlistItem{UserEmail: actor.Email, TourID: tourID}
	if err := s.items.Add(ctx, &item); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.WishlistItem{}, fmt.Errorf("%s:%w", op, ErrAlreadyInList)
		}
		return domain.WishlistItem{}, fmt.Errorf("%s:%w", op, err)
	}

	return item, nil
}

func (s *Service) Remove(ctx context.Context, actor domain.Principal, tourID uuid.UUID) error {
	const op = "service.wishlist.Remove"

	if err := s.items.Remove(ctx, actor.Email, tourID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrEntryNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
