package wishlist

import "github.com/kirinyoku/tour-go/internal/apperr"

var (
	ErrTourNotFound   = apperr.New(apperr.NotFound, "tour not found")
	ErrEntryNotFound  = apperr.New(apperr.NotFound, "tour not in wishlist")
	ErrTourIDRequired = apperr.New(apperr.InvalidArgument, "tour ID is required")
	ErrAlreadyInList  = apperr.New(apperr.InvalidArgument, "tour already in wishlist")
)
