package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "tourgo:v1"

func KeyTour(tourID uuid.UUID) string {
	return fmt.Sprintf("%s:tour:%s", ns, tourID)
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func KeyIdemCheckout(userID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:checkout:%s:%s", ns, userID, idemKey)
}
