package bookings

import "github.com/kirinyoku/tour-go/internal/apperr"

var (
	ErrTourNotFound      = apperr.New(apperr.NotFound, "tour not found")
	ErrBookingNotFound   = apperr.New(apperr.NotFound, "booking not found")
	ErrInvalidPeople     = apperr.New(apperr.InvalidArgument, "number of people must be at least 1")
	ErrStartDateRequired = apperr.New(apperr.InvalidArgument, "start date is required")
	ErrExceedsCapacity   = apperr.New(apperr.InvalidArgument, "number of people exceeds capacity")
	ErrPriceMismatch     = apperr.New(apperr.InvalidArgument, "price mismatch")
	ErrNotEnoughSpots    = apperr.New(apperr.InvalidArgument, "not enough spots left")
	ErrInvalidStatus     = apperr.New(apperr.InvalidArgument, "invalid status")
	ErrInvalidTransition = apperr.New(apperr.InvalidArgument, "only pending bookings can be confirmed or cancelled")
	ErrForbidden         = apperr.New(apperr.Forbidden, "forbidden")
)
