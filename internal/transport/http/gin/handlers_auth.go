package httpgin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kirinyoku/tour-go/internal/service"
	"github.com/kirinyoku/tour-go/internal/service/accounts"
)

// @Summary  Sign up
// @Param    req  body  SignupRequest  true  "payload"
// @Success  201  {object}  UserResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "email taken"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /auth/signup [post]
func handleSignup(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "all fields are required")
			return
		}

		u, err := svcs.Accounts.Signup(c.Request.Context(), accounts.SignupInput{
			Name:      req.Name,
			Email:     req.Email,
			Password:  req.Password,
			ClientKey: c.ClientIP(),
		})
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, UserResponse{User: u})
	}
}

// @Summary  Log in
// @Param    req  body  LoginRequest  true  "payload"
// @Success  200  {object}  accounts.Session
// @Failure  401  {object}  ErrorResponse
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Router   /auth/login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "email and password are required")
			return
		}

		sess, err := svcs.Accounts.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, sess)
	}
}

// @Summary  Current user profile
// @Security BearerAuth
// @Success  200  {object}  UserResponse
// @Failure  401  {object}  ErrorResponse
// @Router   /users/me [get]
func handleGetProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := svcs.Accounts.Profile(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: u})
	}
}

// @Summary  Update profile name
// @Security BearerAuth
// @Param    req  body  UpdateProfileRequest  true  "payload"
// @Success  200  {object}  UserResponse
// @Failure  400  {object}  ErrorResponse
// @Router   /users/me [patch]
func handleUpdateProfile(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "name is required")
			return
		}

		u, err := svcs.Accounts.UpdateProfile(c.Request.Context(), principal(c), req.Name)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: u})
	}
}

// @Summary  Whether the caller is an administrator
// @Security BearerAuth
// @Success  200  {object}  CheckAdminResponse
// @Router   /users/me/admin [get]
func handleCheckAdmin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := svcs.Accounts.CheckAdmin(c.Request.Context(), principal(c))
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, CheckAdminResponse{IsAdmin: ok})
	}
}
