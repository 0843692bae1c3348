package httpgin

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/tour-go/internal/apperr"
	"github.com/kirinyoku/tour-go/internal/availability"
	"github.com/kirinyoku/tour-go/internal/notify"
	"github.com/kirinyoku/tour-go/internal/service"
)

// HealthFunc reports the notification pipeline counters for /healthz.
type HealthFunc func() notify.Stats

func NewRouter(
	svcs *service.Services,
	tokens TokenParser,
	health HealthFunc,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(), Authenticate(tokens))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", handleHealth(svcs, health))

	// Public API
	r.POST("/auth/signup", handleSignup(svcs))
	r.POST("/auth/login", handleLogin(svcs))

	r.GET("/tours", handleListTours(svcs))
	r.GET("/tours/:id", handleGetTour(svcs))
	r.GET("/tours/:id/availability", handleGetAvailability(svcs))

	r.GET("/reviews", handleListReviews(svcs))

	r.POST("/webhooks/stripe", handleStripeWebhook(svcs, logger))

	// Authenticated API
	authed := r.Group("/", RequireAuth())
	{
		authed.GET("/users/me", handleGetProfile(svcs))
		authed.PATCH("/users/me", handleUpdateProfile(svcs))
		authed.GET("/users/me/admin", handleCheckAdmin(svcs))

		authed.POST("/bookings", handleCreateBooking(svcs))
		authed.GET("/bookings", handleListMyBookings(svcs))
		authed.GET("/bookings/:id", handleGetBooking(svcs))
		authed.PATCH("/bookings/:id", handleUpdateBookingStatus(svcs))

		authed.POST("/reviews", handleCreateReview(svcs))
		authed.PATCH("/reviews/:id", handleUpdateReview(svcs))
		authed.DELETE("/reviews/:id", handleDeleteReview(svcs))

		authed.GET("/wishlist", handleListWishlist(svcs))
		authed.POST("/wishlist", handleAddWishlist(svcs))
		authed.DELETE("/wishlist/:tourId", handleRemoveWishlist(svcs))

		authed.POST("/checkout/sessions", handleCreateCheckoutSession(svcs))
	}

	// Admin API
	admin := r.Group("/admin", RequireAdmin(svcs.Accounts))
	{
		admin.GET("/stats", handleAdminStats(svcs))

		admin.GET("/users", handleAdminListUsers(svcs))
		admin.PATCH("/users/:id", handleAdminSetRole(svcs))

		admin.GET("/bookings", handleAdminListBookings(svcs))
		admin.PATCH("/bookings/:id", handleUpdateBookingStatus(svcs))

		admin.GET("/tours", handleAdminListTours(svcs))
		admin.POST("/tours", handleAdminCreateTour(svcs))
		admin.PATCH("/tours/:id", handleAdminUpdateTour(svcs))
		admin.DELETE("/tours/:id", handleAdminDeleteTour(svcs))
	}

	return r
}

// @Summary  Health and notification counters
// @Success  200  {object}  HealthResponse
// @Router   /healthz [get]
func handleHealth(svcs *service.Services, health HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{Status: "ok", Payments: svcs.Checkout.Enabled()}
		if health != nil {
			resp.Notifications = health()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// --- Helpers ---

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// parseDate accepts a calendar date or an RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return availability.NormalizeDate(t), nil
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes err as JSON. Unclassified errors are recorded on the
// context for the access log and answered with a generic message.
func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	status := statusFor(apperr.KindOf(err))
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}

	if d, ok := apperr.RetryAfter(err); ok {
		c.Header("Retry-After", strconv.Itoa(max(1, int(math.Ceil(d.Seconds())))))
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: apperr.Message(err)})
}
