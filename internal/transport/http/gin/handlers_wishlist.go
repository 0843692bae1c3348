package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/service"
)

// @Summary  My wishlist
// @Security BearerAuth
// @Success  200  {array}  domain.WishlistEntry
// @Router   /wishlist [get]
func handleListWishlist(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Wishlist.List(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Save a tour to the wishlist
// @Security BearerAuth
// @Param    req  body  WishlistRequest  true  "payload"
// @Success  201  {object}  domain.WishlistItem
// @Failure  400  {object}  ErrorResponse "already in wishlist"
// @Failure  404  {object}  ErrorResponse
// @Router   /wishlist [post]
func handleAddWishlist(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "tour ID is required")
			return
		}

		item, err := svcs.Wishlist.Add(c.Request.Context(), principal(c), uuid.MustParse(req.TourID))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, item)
	}
}

// @Summary  Remove a tour from the wishlist
// @Security BearerAuth
// @Param    tourId  path  string  true  "Tour ID"
// @Success  200  {object}  MessageResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /wishlist/{tourId} [delete]
func handleRemoveWishlist(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tourID, ok := parseUUIDParam(c, "tourId")
		if !ok {
			return
		}

		if err := svcs.Wishlist.Remove(c.Request.Context(), principal(c), tourID); err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "removed from wishlist"})
	}
}
