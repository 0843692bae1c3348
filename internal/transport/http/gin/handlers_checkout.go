package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kirinyoku/tour-go/internal/service"
	"github.com/kirinyoku/tour-go/internal/service/checkout"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 64 << 10

// @Summary  Open a hosted checkout (idempotent)
// @Security BearerAuth
// @Param    req  body  CheckoutRequest  true  "payload"
// @Param    Idempotency-Key  header  string  false  "repeat-safe key"
// @Success  200  {object}  payment.CheckoutSession
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "idempotency key in progress"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Failure  503  {object}  ErrorResponse "payments not configured"
// @Router   /checkout/sessions [post]
func handleCreateCheckoutSession(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "missing required fields")
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			badRequest(c, "invalid startDate")
			return
		}

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))

		sess, err := svcs.Checkout.CreateSession(c.Request.Context(), principal(c), checkout.SessionInput{
			TourID:         uuid.MustParse(req.TourID),
			StartDate:      start,
			NumberOfPeople: req.NumberOfPeople,
		}, idemKey)
		if err != nil {
			if errors.Is(err, checkout.ErrInProgress) {
				c.Header("Retry-After", "1")
			}
			respondErr(c, err)
			return
		}

		if idemKey != "" {
			c.Header("Idempotency-Key", idemKey)
		}
		c.JSON(http.StatusOK, sess)
	}
}

// @Summary  Payment processor webhook
// @Param    Stripe-Signature  header  string  true  "signature"
// @Success  200  {object}  WebhookResponse
// @Failure  400  {object}  ErrorResponse "bad signature"
// @Failure  404  {object}  ErrorResponse "unknown user or tour"
// @Router   /webhooks/stripe [post]
func handleStripeWebhook(svcs *service.Services, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)

		payload, err := c.GetRawData()
		if err != nil {
			badRequest(c, "unreadable body")
			return
		}

		b, err := svcs.Checkout.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			logger.Warn("webhook rejected", slog.String("error", err.Error()))
			respondErr(c, err)
			return
		}

		if b != nil {
			logger.Info("paid booking created",
				slog.String("booking_id", b.ID.String()),
				slog.String("tour_id", b.TourID.String()),
				slog.String("session_id", b.PaymentSessionID),
			)
		}

		c.JSON(http.StatusOK, WebhookResponse{Received: true})
	}
}
