package domain

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyModerate  Difficulty = "moderate"
	DifficultyDifficult Difficulty = "difficult"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyDifficult:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// ConsumesCapacity reports whether a booking in this status takes spots on its date.
func (s BookingStatus) ConsumesCapacity() bool {
	return s != BookingCancelled
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// DefaultRating is the rating a tour carries while it has no reviews.
const DefaultRating = 4.5

type Tour struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	Duration     int         `json:"duration"`
	MaxGroupSize int         `json:"maxGroupSize"`
	Difficulty   Difficulty  `json:"difficulty"`
	Rating       float64     `json:"rating"`
	NumReviews   int         `json:"numReviews"`
	ImageURL     string      `json:"imageUrl"`
	Images       []string    `json:"images"`
	Location     string      `json:"location"`
	StartDates   []time.Time `json:"startDates"`
	Highlights   []string    `json:"highlights"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type Booking struct {
	ID               uuid.UUID     `json:"id"`
	TourID           uuid.UUID     `json:"tourId"`
	UserEmail        string        `json:"userEmail"`
	StartDate        time.Time     `json:"startDate"`
	NumberOfPeople   int           `json:"numberOfPeople"`
	TotalPrice       float64       `json:"totalPrice"`
	Status           BookingStatus `json:"status"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	PaymentSessionID string        `json:"paymentSessionId,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// BookingWithTour is a booking joined with the tour it references.
type BookingWithTour struct {
	Booking
	Tour Tour `json:"tour"`
}

// BookingSummary is the admin view of a booking.
type BookingSummary struct {
	Booking
	TourName string `json:"tourName"`
	UserName string `json:"userName"`
}

type Review struct {
	ID           uuid.UUID `json:"id"`
	TourID       uuid.UUID `json:"tourId"`
	UserID       uuid.UUID `json:"userId"`
	UserName     string    `json:"userName"`
	UserAvatar   string    `json:"userAvatar"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	HelpfulVotes int       `json:"helpfulVotes"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReviewPage struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Pages   int      `json:"pages"`
	HasMore bool     `json:"hasMore"`
}

type WishlistItem struct {
	ID        uuid.UUID `json:"id"`
	UserEmail string    `json:"userEmail"`
	TourID    uuid.UUID `json:"tourId"`
	CreatedAt time.Time `json:"createdAt"`
}

type WishlistEntry struct {
	WishlistItem
	Tour Tour `json:"tour"`
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserWithStats struct {
	User
	BookingCount int     `json:"bookingCount"`
	TotalSpent   float64 `json:"totalSpent"`
}

// Principal is the authenticated caller as seen by services.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   Role
}

func (p Principal) Can(c Capability) bool {
	return p.Role.Can(c)
}

// DateAvailability is the remaining capacity of one scheduled departure.
type DateAvailability struct {
	Date       time.Time `json:"date"`
	Available  bool      `json:"available"`
	SpotsLeft  int       `json:"spotsLeft"`
	TotalSpots int       `json:"totalSpots"`
}

type TourSort string

const (
	SortPriceAsc  TourSort = "price-asc"
	SortPriceDesc TourSort = "price-desc"
	SortRating    TourSort = "rating"
	SortName      TourSort = "name"
)

type TourFilter struct {
	Search      string
	Difficulty  Difficulty
	MinPrice    float64
	MaxPrice    float64
	MinDuration int
	MaxDuration int
	SortBy      TourSort
}

type AdminStats struct {
	TotalTours     int              `json:"totalTours"`
	TotalBookings  int              `json:"totalBookings"`
	TotalUsers     int              `json:"totalUsers"`
	TotalRevenue   float64          `json:"totalRevenue"`
	RecentBookings []BookingSummary `json:"recentBookings"`
}
