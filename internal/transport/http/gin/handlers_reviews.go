package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/service"
	"github.com/kirinyoku/tour-go/internal/service/reviews"
)

// @Summary  Reviews of a tour, newest first
// @Param    tourId  query  string  true   "Tour ID"
// @Param    page    query  int     false  "default 1"
// @Param    limit   query  int     false  "default 10, max 50"
// @Success  200  {object}  domain.ReviewPage
// @Failure  400  {object}  ErrorResponse
// @Router   /reviews [get]
func handleListReviews(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tourID, err := uuid.Parse(c.Query("tourId"))
		if err != nil {
			badRequest(c, "tour ID is required")
			return
		}

		page, err := svcs.Reviews.List(
			c.Request.Context(),
			tourID,
			parseIntDefault(c.Query("page"), 1),
			parseIntDefault(c.Query("limit"), 10),
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, page)
	}
}

// @Summary  Review a tour
// @Security BearerAuth
// @Param    req  body  CreateReviewRequest  true  "payload"
// @Success  201  {object}  domain.Review
// @Failure  400  {object}  ErrorResponse "invalid or duplicate review"
// @Failure  404  {object}  ErrorResponse
// @Router   /reviews [post]
func handleCreateReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "tour ID is required")
			return
		}

		rv, err := svcs.Reviews.Create(c.Request.Context(), principal(c), uuid.MustParse(req.TourID), reviews.Input{
			Rating:  req.Rating,
			Title:   req.Title,
			Comment: req.Comment,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, rv)
	}
}

// @Summary  Edit own review
// @Security BearerAuth
// @Param    id   path  string               true  "Review ID"
// @Param    req  body  UpdateReviewRequest  true  "fields to change"
// @Success  200  {object}  domain.Review
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /reviews/{id} [patch]
func handleUpdateReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		rv, err := svcs.Reviews.Update(c.Request.Context(), principal(c), id, reviews.Input{
			Rating:  req.Rating,
			Title:   req.Title,
			Comment: req.Comment,
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, rv)
	}
}

// @Summary  Delete review
// @Security BearerAuth
// @Param    id  path  string  true  "Review ID"
// @Success  200  {object}  MessageResponse
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /reviews/{id} [delete]
func handleDeleteReview(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		if err := svcs.Reviews.Delete(c.Request.Context(), principal(c), id); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "review deleted"})
	}
}
