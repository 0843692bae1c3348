package tours

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/repository"
)

// Input carries every editable field of a tour.
type Input struct {
	Name         string
	Description  string
	Price        float64
	Duration     int
	MaxGroupSize int
	Difficulty   string
	ImageURL     string
	Images       []string
	Location     string
	StartDates   []time.Time
	Highlights   []string
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Name         *string
	Description  *string
	Price        *float64
	Duration     *int
	MaxGroupSize *int
	Difficulty   *string
	ImageURL     *string
	Images       *[]string
	Location     *string
	StartDates   *[]time.Time
	Highlights   *[]string
}

func (p Patch) apply(t *domain.Tour) {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		t.Price = *p.Price
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.MaxGroupSize != nil {
		t.MaxGroupSize = *p.MaxGroupSize
	}
	if p.Difficulty != nil {
		t.Difficulty = domain.Difficulty(strings.ToLower(strings.TrimSpace(*p.Difficulty)))
	}
	if p.ImageURL != nil {
		t.ImageURL = strings.TrimSpace(*p.ImageURL)
	}
	if p.Images != nil {
		t.Images = *p.Images
	}
	if p.Location != nil {
		t.Location = strings.TrimSpace(*p.Location)
	}
	if p.StartDates != nil {
		t.StartDates = *p.StartDates
	}
	if p.Highlights != nil {
		t.Highlights = *p.Highlights
	}
}

// Validate checks the invariants every stored tour must hold.
func Validate(t domain.Tour) error {
	switch {
	case t.Name == "":
		return ValidationError("name is required")
	case len([]rune(t.Name)) > 100:
		return ValidationError("name cannot exceed 100 characters")
	case t.Description == "":
		return ValidationError("description is required")
	case t.Price < 0:
		return ValidationError("price cannot be negative")
	case t.Duration < 1:
		return ValidationError("duration must be at least 1 day")
	case t.MaxGroupSize < 1:
		return ValidationError("group size must be at least 1")
	case !t.Difficulty.Valid():
		return ValidationError("difficulty must be easy, moderate, or difficult")
	case t.ImageURL == "":
		return ValidationError("image URL is required")
	case t.Location == "":
		return ValidationError("location is required")
	case len(t.StartDates) == 0:
		return ValidationError("at least one start date is required")
	case len(t.Highlights) == 0:
		return ValidationError("at least one highlight is required")
	}
	return nil
}

// ListAll returns every tour, newest first.
func (s *Service) ListAll(ctx context.Context, actor domain.Principal) ([]domain.Tour, error) {
	const op = "service.tours.ListAll"

	if !actor.Can(domain.CapManageTours) {
		return nil, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	out, err := s.tours.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Create validates and stores a new tour with the default rating.
//
// Returns:
//   - error: tours.ErrForbidden unless actor may manage tours.
//   - error: an InvalidArgument error naming the offending field.
//   - error: tours.ErrTourNameTaken if the name is in use.
func (s *Service) Create(ctx context.Context, actor domain.Principal, in Input) (domain.Tour, error) {
	const op = "service.tours.Create"

	if !actor.Can(domain.CapManageTours) {
		return domain.Tour{}, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	t := domain.Tour{
		Name:         strings.TrimSpace(in.Name),
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		Duration:     in.Duration,
		MaxGroupSize: in.MaxGroupSize,
		Difficulty:   domain.Difficulty(strings.ToLower(strings.TrimSpace(in.Difficulty))),
		Rating:       domain.DefaultRating,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Images:       in.Images,
		Location:     strings.TrimSpace(in.Location),
		StartDates:   in.StartDates,
		Highlights:   in.Highlights,
	}

	if err := Validate(t); err != nil {
		return domain.Tour{}, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.tours.Create(ctx, &t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Tour{}, fmt.Errorf("%s:%w", op, ErrTourNameTaken)
		}
		return domain.Tour{}, fmt.Errorf("%s:%w", op, err)
	}

	return t, nil
}

// Update applies p to the tour and drops its cached copy.
func (s *Service) Update(ctx context.Context, actor domain.Principal, id uuid.UUID, p Patch) (domain.Tour, error) {
	const op = "service.tours.Update"

	if !actor.Can(domain.CapManageTours) {
		return domain.Tour{}, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	t, err := s.tours.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Tour{}, fmt.Errorf("%s:%w", op, ErrTourNotFound)
		}
		return domain.Tour{}, fmt.Errorf("%s:%w", op, err)
	}

	p.apply(&t)
	if err := Validate(t); err != nil {
		return domain.Tour{}, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.tours.Update(ctx, &t); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return domain.Tour{}, fmt.Errorf("%s:%w", op, ErrTourNotFound)
		case errors.Is(err, repository.ErrConflict):
			return domain.Tour{}, fmt.Errorf("%s:%w", op, ErrTourNameTaken)
		}
		return domain.Tour{}, fmt.Errorf("%s:%w", op, err)
	}

	s.Invalidate(ctx, id)

	return t, nil
}

// Delete removes a tour and drops its cached copy.
func (s *Service) Delete(ctx context.Context, actor domain.Principal, id uuid.UUID) error {
	const op = "service.tours.Delete"

	if !actor.Can(domain.CapManageTours) {
		return fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	if err := s.tours.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s:%w", op, ErrTourNotFound)
		}
		return fmt.Errorf("%s:%w", op, err)
	}

	s.Invalidate(ctx, id)

	return nil
}
