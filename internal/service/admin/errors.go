package admin

import "github.com/kirinyoku/tour-go/internal/apperr"

var ErrForbidden = apperr.New(apperr.Forbidden, "forbidden")
