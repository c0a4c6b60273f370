package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(key, msg).Error(0)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

var fixedNow = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

func newTestPublisher(t *testing.T) (*Publisher, *MockChannel) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", QueueBookingConfirmed, true).Return(nil)
	ch.On("QueueDeclare", QueuePaymentRefund, true).Return(nil)
	p, err := newPublisher(ch)
	require.NoError(t, err)
	p.now = func() time.Time { return fixedNow }
	return p, ch
}

func TestNewPublisher_DeclaresDurableQueues(t *testing.T) {
	_, ch := newTestPublisher(t)
	ch.AssertNumberOfCalls(t, "QueueDeclare", 2)
}

func TestNewPublisher_DeclareError(t *testing.T) {
	ch := new(MockChannel)
	ch.On("QueueDeclare", QueueBookingConfirmed, true).Return(errors.New("access refused"))
	ch.On("Close").Return(nil)

	_, err := newPublisher(ch)
	assert.Error(t, err)
	ch.AssertCalled(t, "Close")
}

func TestPublisher_PublishBookingConfirmed(t *testing.T) {
	p, ch := newTestPublisher(t)
	var sent amqp.Publishing
	ch.On("PublishWithContext", QueueBookingConfirmed, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(amqp.Publishing) }).
		Return(nil)

	b := &booking.Booking{
		ID:            "BMS1",
		ShowtimeID:    "show-1",
		UserID:        "user-1",
		SeatIDs:       []string{"A1"},
		Charges:       booking.CalculateCharges(250),
		PaymentRef:    "pay-1",
		PaymentMethod: "card",
		CreatedAt:     fixedNow,
	}
	require.NoError(t, p.PublishBookingConfirmed(context.Background(), b))

	assert.Equal(t, "application/json", sent.ContentType)
	assert.Equal(t, amqp.Persistent, sent.DeliveryMode)

	var event BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(sent.Body, &event))
	assert.Equal(t, "BMS1", event.BookingID)
	assert.Equal(t, 301, event.Total)
	assert.Equal(t, 46, event.GST)
}

func TestPublisher_IssueRefund(t *testing.T) {
	t.Run("返金指示を送信できる", func(t *testing.T) {
		p, ch := newTestPublisher(t)
		var sent amqp.Publishing
		ch.On("PublishWithContext", QueuePaymentRefund, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.Get(1).(amqp.Publishing) }).
			Return(nil)

		refund := payment.Refund{PaymentRef: "pay-1", HoldID: "hold-1", BookingID: "BMS1", Amount: 301, Method: payment.MethodUPI, Reason: payment.RefundHoldExpired, IssuedAt: fixedNow}
		require.NoError(t, p.IssueRefund(context.Background(), refund))

		var msg RefundMessage
		require.NoError(t, json.Unmarshal(sent.Body, &msg))
		assert.Equal(t, "pay-1", msg.PaymentRef)
		assert.Equal(t, 301, msg.Amount)
		assert.Equal(t, "hold_expired", msg.Reason)
		assert.Equal(t, "upi", msg.Method)
	})

	t.Run("送信失敗はErrRefundNotDelivered", func(t *testing.T) {
		p, ch := newTestPublisher(t)
		ch.On("PublishWithContext", QueuePaymentRefund, mock.Anything).Return(amqp.ErrClosed)

		err := p.IssueRefund(context.Background(), payment.Refund{PaymentRef: "pay-1", Amount: 301})
		assert.ErrorIs(t, err, payment.ErrRefundNotDelivered)
		assert.ErrorIs(t, err, amqp.ErrClosed)
	})
}
