package checkout

import "github.com/kirinyoku/tour-go/internal/apperr"

var (
	ErrPaymentsDisabled = apperr.New(apperr.Unavailable, "payments are not configured")
	ErrTourNotFound     = apperr.New(apperr.NotFound, "tour not found")
	ErrUserNotFound     = apperr.New(apperr.NotFound, "user not found")
	ErrInvalidPeople    = apperr.New(apperr.InvalidArgument, "number of people must be at least 1")
	ErrStartDateMissing = apperr.New(apperr.InvalidArgument, "start date is required")
	ErrMissingSignature = apperr.New(apperr.InvalidArgument, "missing signature")
	ErrInvalidSignature = apperr.New(apperr.InvalidArgument, "invalid signature")
	ErrInProgress       = apperr.New(apperr.Conflict, "a request with this idempotency key is in progress")
)
