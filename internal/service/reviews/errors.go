package reviews

import "github.com/kirinyoku/tour-go/internal/apperr"

var (
	ErrTourNotFound    = apperr.New(apperr.NotFound, "tour not found")
	ErrReviewNotFound  = apperr.New(apperr.NotFound, "review not found")
	ErrTourIDRequired  = apperr.New(apperr.InvalidArgument, "tour ID is required")
	ErrInvalidRating   = apperr.New(apperr.InvalidArgument, "rating must be a whole number between 1 and 5")
	ErrTitleRequired   = apperr.New(apperr.InvalidArgument, "title is required")
	ErrTitleTooLong    = apperr.New(apperr.InvalidArgument, "title cannot exceed 100 characters")
	ErrCommentRequired = apperr.New(apperr.InvalidArgument, "comment is required")
	ErrCommentTooLong  = apperr.New(apperr.InvalidArgument, "comment cannot exceed 1000 characters")
	ErrAlreadyReviewed = apperr.New(apperr.InvalidArgument, "you have already reviewed this tour")
	ErrForbidden       = apperr.New(apperr.Forbidden, "you can only modify your own reviews")
)
