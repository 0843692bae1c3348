package accounts

import "github.com/kirinyoku/tour-go/internal/apperr"

var (
	ErrFieldsRequired     = apperr.New(apperr.InvalidArgument, "all fields are required")
	ErrInvalidEmail       = apperr.New(apperr.InvalidArgument, "invalid email format")
	ErrPasswordTooShort   = apperr.New(apperr.InvalidArgument, "password must be at least 6 characters")
	ErrNameTooLong        = apperr.New(apperr.InvalidArgument, "name cannot exceed 50 characters")
	ErrNameTooShort       = apperr.New(apperr.InvalidArgument, "name must be at least 2 characters")
	ErrEmailTaken         = apperr.New(apperr.Conflict, "user with this email already exists")
	ErrInvalidCredentials = apperr.New(apperr.Unauthorized, "invalid credentials")
	ErrUserNotFound       = apperr.New(apperr.NotFound, "user not found")
	ErrInvalidRole        = apperr.New(apperr.InvalidArgument, "invalid role")
	ErrForbidden          = apperr.New(apperr.Forbidden, "forbidden")
)
