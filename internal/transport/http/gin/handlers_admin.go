package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/tour-go/internal/service"
)

// @Summary  Dashboard counters and recent bookings (admin)
// @Security BearerAuth
// @Success  200  {object}  domain.AdminStats
// @Failure  403  {object}  ErrorResponse
// @Router   /admin/stats [get]
func handleAdminStats(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svcs.Admin.Stats(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, st)
	}
}

// @Summary  Users with booking totals (admin)
// @Security BearerAuth
// @Success  200  {array}  domain.UserWithStats
// @Router   /admin/users [get]
func handleAdminListUsers(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svcs.Accounts.ListUsers(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
	}
}

// @Summary  Change a user's role (admin)
// @Security BearerAuth
// @Param    id   path  string          true  "User ID"
// @Param    req  body  SetRoleRequest  true  "payload"
// @Success  200  {object}  UserResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /admin/users/{id} [patch]
func handleAdminSetRole(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseUUIDParam(c, "id")
		if !ok {
			return
		}

		var req SetRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "role is required")
			return
		}

		u, err := svcs.Accounts.SetRole(c.Request.Context(), principal(c), id, req.Role)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: u})
	}
}
