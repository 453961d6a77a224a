// Package transferevents publishes committed transfers to RabbitMQ.
package transferevents

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/go-petr/p2p-bank/internal/domain"
)

// Exchange and routing key of transfer events.
const (
	Exchange            = "transfer_events"
	RoutingKeyCompleted = "transfer.completed"
)

const dialTimeout = 10 * time.Second

// Event is the message body published for a committed transfer.
type Event struct {
	EventID           uuid.UUID `json:"event_id"`
	TransferID        int64     `json:"transfer_id"`
	SenderUserID      int64     `json:"sender_user_id"`
	FromAccountNumber string    `json:"numero_cuenta_enviar"`
	ToAccountNumber   string    `json:"numero_cuenta_recibe"`
	Amount            int64     `json:"cantidad_dinero"`
	CreatedAt         time.Time `json:"fecha"`
}

// NewEvent returns the event announcing t.
func NewEvent(t domain.Transfer) (Event, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return Event{}, err
	}

	return Event{
		EventID:           id,
		TransferID:        t.ID,
		SenderUserID:      t.SenderUserID,
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Amount:            t.Amount,
		CreatedAt:         t.CreatedAt,
	}, nil
}

// channel is the part of *amqp.Channel used by Producer.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Producer publishes transfer events to a durable topic exchange.
type Producer struct {
	conn *amqp.Connection

	mu sync.Mutex
	ch channel
}

// Dial connects to RabbitMQ at url and declares the exchange.
func Dial(url string) (*Producer, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newProducer(conn, ch)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return p, nil
}

func newProducer(conn *amqp.Connection, ch channel) (*Producer, error) {
	err := ch.ExchangeDeclare(
		Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", Exchange, err)
	}

	return &Producer{conn: conn, ch: ch}, nil
}

// PublishTransfer publishes a transfer.completed event for t.
func (p *Producer) PublishTransfer(ctx context.Context, t domain.Transfer) error {
	event, err := NewEvent(t)
	if err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, Exchange, RoutingKeyCompleted, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyCompleted, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("event_id", msg.MessageId).
		Int64("transfer_id", t.ID).
		Msg("transfer event published")

	return nil
}

// Close closes the channel and the connection.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		return err
	}

	if p.conn != nil {
		return p.conn.Close()
	}

	return nil
}

// Discard is used when no broker is configured. It only logs the events.
type Discard struct{}

// PublishTransfer logs t and drops it.
func (Discard) PublishTransfer(ctx context.Context, t domain.Transfer) error {
	zerolog.Ctx(ctx).Debug().
		Int64("transfer_id", t.ID).
		Msg("transfer event dropped, no broker configured")

	return nil
}

// Close does nothing.
func (Discard) Close() error {
	return nil
}
