package apperr

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := New(NotFound, "tour not found")
	err := fmt.Errorf("%s:%w", "service.tours.Get", base)

	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, "tour not found", Message(err))
	assert.True(t, errors.Is(err, base))
	assert.True(t, Is(err, NotFound))
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("pq: connection reset")

	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, "internal error", Message(err))
	assert.False(t, Is(nil, Internal))
}

func TestLimited(t *testing.T) {
	err := fmt.Errorf("%s:%w", "service.bookings.Create", Limited(3*time.Second))

	assert.Equal(t, RateLimited, KindOf(err))
	d, ok := RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	_, ok = RetryAfter(New(NotFound, "x"))
	assert.False(t, ok)
}
