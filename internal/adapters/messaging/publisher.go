// Package messaging publishes expense events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"expense-insight/internal/core/domain"

	"github.com/rabbitmq/amqp091-go"
)

// RoutingKeyAnomaly is the routing key of AnomalyEvent messages
const RoutingKeyAnomaly = "expense.anomaly"

const publishTimeout = 5 * time.Second

// ErrClosed is returned when publishing after Close
var ErrClosed = errors.New("publisher is closed")

// Publisher sends events to a durable topic exchange.
// A single channel is shared, so publishes are serialized.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewPublisher dials url and declares exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// PublishAnomaly publishes event as persistent JSON
func (p *Publisher) PublishAnomaly(ctx context.Context, event domain.AnomalyEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return ErrClosed
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,        // exchange
		RoutingKeyAnomaly, // routing key
		false,             // mandatory
		false,             // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("publish anomaly event: %w", err)
	}
	return nil
}

func newPublishing(event domain.AnomalyEvent) (amqp091.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal anomaly event: %w", err)
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    event.DetectedAt,
		Type:         RoutingKeyAnomaly,
		Body:         body,
	}, nil
}

// Close closes the channel and connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// NopPublisher drops every event. Used when AMQP_URL is unset.
type NopPublisher struct{}

// PublishAnomaly does nothing
func (NopPublisher) PublishAnomaly(context.Context, domain.AnomalyEvent) error {
	return nil
}
