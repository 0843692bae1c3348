package httpgin

import (
	"time"

	"github.com/kirinyoku/tour-go/internal/domain"
	"github.com/kirinyoku/tour-go/internal/notify"
)

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateBookingRequest struct {
	TourID         string  `json:"tourId" binding:"required,uuid"`
	StartDate      string  `json:"startDate" binding:"required"`
	NumberOfPeople int     `json:"numberOfPeople" binding:"required"`
	TotalPrice     float64 `json:"totalPrice"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CreateReviewRequest struct {
	TourID  string  `json:"tourId" binding:"required,uuid"`
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Title   *string `json:"title"`
	Comment *string `json:"comment"`
}

type WishlistRequest struct {
	TourID string `json:"tourId" binding:"required,uuid"`
}

type CheckoutRequest struct {
	TourID         string `json:"tourId" binding:"required,uuid"`
	StartDate      string `json:"startDate" binding:"required"`
	NumberOfPeople int    `json:"numberOfPeople" binding:"required"`
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type TourRequest struct {
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	Duration     int         `json:"duration"`
	MaxGroupSize int         `json:"maxGroupSize"`
	Difficulty   string      `json:"difficulty"`
	ImageURL     string      `json:"imageUrl"`
	Images       []string    `json:"images"`
	Location     string      `json:"location"`
	StartDates   []time.Time `json:"startDates"`
	Highlights   []string    `json:"highlights"`
}

type TourPatchRequest struct {
	Name         *string      `json:"name"`
	Description  *string      `json:"description"`
	Price        *float64     `json:"price"`
	Duration     *int         `json:"duration"`
	MaxGroupSize *int         `json:"maxGroupSize"`
	Difficulty   *string      `json:"difficulty"`
	ImageURL     *string      `json:"imageUrl"`
	Images       *[]string    `json:"images"`
	Location     *string      `json:"location"`
	StartDates   *[]time.Time `json:"startDates"`
	Highlights   *[]string    `json:"highlights"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status        string       `json:"status"`
	Payments      bool         `json:"payments"`
	Notifications notify.Stats `json:"notifications"`
}

type UserResponse struct {
	User domain.User `json:"user"`
}

type CheckAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
