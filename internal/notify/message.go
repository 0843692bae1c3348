// Package notify hands booking notifications off the request path. A
// Dispatcher queues them in process and delivers them to a Sender: the
// mailer directly, or an AMQP queue drained by a Consumer.
package notify

import (
	"context"
	"time"

	"github.com/kirinyoku/tour-go/internal/domain"
)

type Kind string

const (
	KindConfirmation Kind = "booking.confirmed"
	KindCancellation Kind = "booking.cancelled"
)

// BookingEmail is the flat data an email template needs.
type BookingEmail struct {
	BookingID      string    `json:"bookingId"`
	UserName       string    `json:"userName"`
	UserEmail      string    `json:"userEmail"`
	TourName       string    `json:"tourName"`
	TourLocation   string    `json:"tourLocation"`
	StartDate      time.Time `json:"startDate"`
	NumberOfPeople int       `json:"numberOfPeople"`
	TotalPrice     float64   `json:"totalPrice"`
}

type Message struct {
	Kind    Kind         `json:"kind"`
	Booking BookingEmail `json:"booking"`
}

// Sender delivers one message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

// NewBookingMessage builds the message for b on tour t, addressed to the
// user whose display name is userName.
func NewBookingMessage(kind Kind, b domain.Booking, t domain.Tour, userName string) Message {
	if userName == "" {
		userName = "Traveler"
	}

	return Message{
		Kind: kind,
		Booking: BookingEmail{
			BookingID:      b.ID.String(),
			UserName:       userName,
			UserEmail:      b.UserEmail,
			TourName:       t.Name,
			TourLocation:   t.Location,
			StartDate:      b.StartDate,
			NumberOfPeople: b.NumberOfPeople,
			TotalPrice:     b.TotalPrice,
		},
	}
}
