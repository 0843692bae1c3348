package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/service"
	"github.com/kirinyoku/tour-go/internal/service/bookings"
)

// @Summary  Book a tour departure
// @Security BearerAuth
// @Param    req  body  CreateBookingRequest  true  "payload"
// @Success  201  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse "exceeds capacity / price mismatch"
// @Failure  404  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /bookings [post]
func handleCreateBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "missing required fields")
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			badRequest(c, "invalid startDate")
			return
		}

		b, err := svcs.Bookings.Create(c.Request.Context(), principal(c), bookings.Input{
			TourID:         uuid.MustParse(req.TourID),
			StartDate:      start,
			NumberOfPeople: req.NumberOfPeople,
			TotalPrice:     req.TotalPrice,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, b)
	}
}

// @Summary  My bookings, newest first
// @Security BearerAuth
// @Success  200  {array}  domain.BookingWithTour
// @Router   /bookings [get]
func handleListMyBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Bookings.ListMine(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Get booking
// @Security BearerAuth
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  domain.Booking
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		b, err := svcs.Bookings.Get(c.Request.Context(), principal(c), id)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  Change booking status
// @Description Owners may confirm or cancel a pending booking; admins may set any status.
// @Security BearerAuth
// @Param    id   path  string               true  "Booking ID"
// @Param    req  body  UpdateStatusRequest  true  "payload"
// @Success  200  {object}  domain.Booking
// @Failure  400  {object}  ErrorResponse
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [patch]
func handleUpdateBookingStatus(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status is required")
			return
		}

		b, err := svcs.Bookings.SetStatus(c.Request.Context(), principal(c), id, domain.BookingStatus(req.Status))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, b)
	}
}

// @Summary  All bookings with tour and user names (admin)
// @Security BearerAuth
// @Success  200  {array}  domain.BookingSummary
// @Router   /admin/bookings [get]
func handleAdminListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Bookings.ListAll(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}
