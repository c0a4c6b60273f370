package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-showtime-seat-reservation/internal/pkg/logger"
)

// キュー名
const (
	QueueBookingConfirmed = "booking.confirmed"
	QueuePaymentRefund    = "payment.refund"
)

// channel は Publisher が使う amqp.Channel の操作
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher は予約確定イベントと返金指示を RabbitMQ へ送る
type Publisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   channel
	now  func() time.Time
}

// Dial はブローカーに接続し、使用するキューを宣言する
func Dial(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗しました: %w", err)
	}
	p, err := newPublisher(ch)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel) (*Publisher, error) {
	for _, q := range []string{QueueBookingConfirmed, QueuePaymentRefund} {
		// durable にしてブローカー再起動後もメッセージを残す
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			ch.Close()
			return nil, fmt.Errorf("キュー宣言に失敗しました (%s): %w", q, err)
		}
	}
	return &Publisher{ch: ch, now: time.Now}, nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (p *Publisher) publish(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("メッセージのシリアライズに失敗: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}

	// amqp.Channel は並行利用できないため直列化する
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		logger.Warn("メッセージ送信に失敗しました", zap.String("queue", queue), zap.Error(err))
		return fmt.Errorf("メッセージ送信に失敗 (%s): %w", queue, err)
	}
	return nil
}

// PublishBookingConfirmed は予約確定イベントを送る
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, b *booking.Booking) error {
	return p.publish(ctx, QueueBookingConfirmed, newBookingConfirmedEvent(b))
}

// IssueRefund は返金指示を送る
func (p *Publisher) IssueRefund(ctx context.Context, refund payment.Refund) error {
	if err := p.publish(ctx, QueuePaymentRefund, newRefundMessage(refund)); err != nil {
		return fmt.Errorf("%w: %w", payment.ErrRefundNotDelivered, err)
	}
	return nil
}

var _ payment.RefundIssuer = (*Publisher)(nil)
