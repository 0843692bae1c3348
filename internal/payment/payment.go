// Package payment wraps the hosted checkout of the payment processor.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const eventCheckoutCompleted = "checkout.session.completed"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutRequest describes one hosted checkout for a tour departure.
type CheckoutRequest struct {
	TourID         uuid.UUID
	TourName       string
	TourImage      string
	Description    string
	UnitPrice      float64
	StartDate      time.Time
	NumberOfPeople int
	CustomerEmail  string
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// PaymentConfirmed is the verified outcome of a completed checkout.
type PaymentConfirmed struct {
	SessionID      string
	TourID         uuid.UUID
	StartDate      time.Time
	NumberOfPeople int
	CustomerEmail  string
	AmountPaid     float64
}

type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	AppURL        string
}

type Stripe struct {
	sc  *client.API
	cfg Config
}

func NewStripe(cfg Config) *Stripe {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	return &Stripe{sc: client.New(cfg.SecretKey, nil), cfg: cfg}
}

// CreateCheckoutSession opens a hosted checkout for req. The tour, date,
// party size and email travel as metadata and come back in the webhook.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	const op = "payment.Stripe.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.CustomerEmail),
		SuccessURL:    stripe.String(s.cfg.AppURL + "/booking-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(s.cfg.AppURL + "/tours/" + req.TourID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.cfg.Currency),
					UnitAmount: stripe.Int64(ToMinorUnits(req.UnitPrice)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.TourName),
						Description: stripe.String(req.Description),
						Images:      imageList(req.TourImage),
					},
				},
				Quantity: stripe.Int64(int64(req.NumberOfPeople)),
			},
		},
	}
	params.Context = ctx
	for k, v := range Metadata(req) {
		params.AddMetadata(k, v)
	}

	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("%s:%w", op, err)
	}

	return CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ParseWebhook verifies payload against the signature header. It returns
// nil without error for event types that are acknowledged and ignored.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*PaymentConfirmed, error) {
	const op = "payment.Stripe.ParseWebhook"

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w: %v", op, ErrInvalidSignature, err)
	}

	if event.Type != eventCheckoutCompleted {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	pc, err := confirmationFromSession(&sess)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return pc, nil
}

func confirmationFromSession(sess *stripe.CheckoutSession) (*PaymentConfirmed, error) {
	md := sess.Metadata

	tourID, err := uuid.Parse(md["tourId"])
	if err != nil {
		return nil, fmt.Errorf("metadata tourId: %w", err)
	}

	start, err := time.Parse(time.RFC3339, md["startDate"])
	if err != nil {
		return nil, fmt.Errorf("metadata startDate: %w", err)
	}

	people, err := strconv.Atoi(md["numberOfPeople"])
	if err != nil || people < 1 {
		return nil, fmt.Errorf("metadata numberOfPeople: %q", md["numberOfPeople"])
	}

	email := sess.CustomerEmail
	if email == "" && sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	if email == "" {
		email = md["userEmail"]
	}

	return &PaymentConfirmed{
		SessionID:      sess.ID,
		TourID:         tourID,
		StartDate:      start,
		NumberOfPeople: people,
		CustomerEmail:  email,
		AmountPaid:     float64(sess.AmountTotal) / 100,
	}, nil
}

// Metadata is what a checkout session carries back to the webhook.
func Metadata(req CheckoutRequest) map[string]string {
	return map[string]string{
		"tourId":         req.TourID.String(),
		"startDate":      req.StartDate.UTC().Format(time.RFC3339),
		"numberOfPeople": strconv.Itoa(req.NumberOfPeople),
		"userEmail":      req.CustomerEmail,
	}
}

// ToMinorUnits converts a price to cents, rounding to the nearest cent.
func ToMinorUnits(v float64) int64 {
	return int64(math.Round(v * 100))
}

func imageList(img string) []*string {
	if img == "" {
		return nil
	}
	return []*string{stripe.String(img)}
}
