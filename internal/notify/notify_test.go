package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/tour-go/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingSender struct {
	mu   sync.Mutex
	got  []Message
	fail func(Message) bool
	done chan struct{}
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.got = append(s.got, msg)
	if s.done != nil {
		s.done <- struct{}{}
	}
	if s.fail != nil && s.fail(msg) {
		return errors.New("smtp refused")
	}
	return nil
}

func msgFor(email string) Message {
	return Message{Kind: KindConfirmation, Booking: BookingEmail{UserEmail: email, BookingID: email}}
}

func TestDispatcherDelivers(t *testing.T) {
	sender := &recordingSender{
		done: make(chan struct{}, 4),
		fail: func(m Message) bool { return m.Booking.UserEmail == "bad@example.com" },
	}
	d := NewDispatcher(sender, discardLogger(), DispatcherConfig{Workers: 2, QueueSize: 4})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- d.Run(ctx) }()

	assert.True(t, d.Dispatch(msgFor("a@example.com")))
	assert.True(t, d.Dispatch(msgFor("bad@example.com")))

	for i := 0; i < 2; i++ {
		select {
		case <-sender.done:
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}
	}

	cancel()
	require.NoError(t, <-done)

	st := d.Stats()
	assert.Equal(t, int64(2), st.Dispatched)
	assert.Equal(t, int64(1), st.Delivered)
	assert.Equal(t, int64(1), st.Failed)
	assert.Equal(t, int64(0), st.Dropped)
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, discardLogger(), DispatcherConfig{Workers: 1, QueueSize: 1})

	// not running, so the queue only holds one message
	assert.True(t, d.Dispatch(msgFor("a@example.com")))
	assert.False(t, d.Dispatch(msgFor("b@example.com")))

	st := d.Stats()
	assert.Equal(t, int64(2), st.Dispatched)
	assert.Equal(t, int64(1), st.Dropped)
}

func TestDispatcherDrainsOnShutdown(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, discardLogger(), DispatcherConfig{Workers: 1, QueueSize: 8})

	for i := 0; i < 3; i++ {
		require.True(t, d.Dispatch(msgFor("a@example.com")))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, int64(3), d.Stats().Delivered)
	assert.Len(t, sender.got, 3)
}

func TestDispatcherDropsAfterStop(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, discardLogger(), DispatcherConfig{Workers: 1, QueueSize: 8})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, d.Run(ctx))

	assert.False(t, d.Dispatch(msgFor("late@example.com")))

	st := d.Stats()
	assert.Equal(t, int64(1), st.Dispatched)
	assert.Equal(t, int64(1), st.Dropped)
	assert.Equal(t, int64(0), st.Delivered)
	assert.Empty(t, sender.got)
}

func TestNewBookingMessage(t *testing.T) {
	b := domain.Booking{
		ID:             uuid.New(),
		UserEmail:      "alice@example.com",
		StartDate:      time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		NumberOfPeople: 2,
		TotalPrice:     4998,
	}
	tour := domain.Tour{Name: "Northern Lights Adventure", Location: "Tromsø, Norway"}

	msg := NewBookingMessage(KindCancellation, b, tour, "")

	assert.Equal(t, KindCancellation, msg.Kind)
	assert.Equal(t, "Traveler", msg.Booking.UserName)
	assert.Equal(t, b.ID.String(), msg.Booking.BookingID)
	assert.Equal(t, "Tromsø, Norway", msg.Booking.TourLocation)
	assert.Equal(t, 4998.0, msg.Booking.TotalPrice)
}

func TestDecodeMessage(t *testing.T) {
	body, err := json.Marshal(msgFor("a@example.com"))
	require.NoError(t, err)

	msg, err := DecodeMessage(body)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", msg.Booking.UserEmail)

	_, err = DecodeMessage([]byte(`{"kind":"booking.refunded","booking":{"userEmail":"a@example.com"}}`))
	assert.Error(t, err)

	_, err = DecodeMessage([]byte(`{"kind":"booking.confirmed","booking":{}}`))
	assert.Error(t, err)

	_, err = DecodeMessage([]byte(`not json`))
	assert.Error(t, err)
}
