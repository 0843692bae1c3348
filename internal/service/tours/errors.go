package tours

import "github.com/kirinyoku/tour-go/internal/apperr"

var (
	ErrTourNotFound  = apperr.New(apperr.NotFound, "tour not found")
	ErrTourNameTaken = apperr.New(apperr.Conflict, "a tour with this name already exists")
	ErrMonthRequired = apperr.New(apperr.InvalidArgument, "month parameter is required")
	ErrInvalidMonth  = apperr.New(apperr.InvalidArgument, "invalid month")
	ErrInvalidFilter = apperr.New(apperr.InvalidArgument, "invalid filter")
	ErrForbidden     = apperr.New(apperr.Forbidden, "forbidden")
)

// ValidationError reports which field of a tour is invalid.
func ValidationError(msg string) error {
	return apperr.New(apperr.InvalidArgument, msg)
}
