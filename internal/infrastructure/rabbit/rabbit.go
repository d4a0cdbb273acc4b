// Package rabbit forwards domain events to a RabbitMQ topic exchange.
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
)

type Conn struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// Connect dials url and declares exchange as a durable topic exchange.
func Connect(url, exchange string) (*Conn, error) {
	c, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbit: dial: %w", err)
	}
	ch, err := c.Channel()
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("rabbit: channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = c.Close()
		return nil, fmt.Errorf("rabbit: declare exchange %s: %w", exchange, err)
	}
	return &Conn{Conn: c, Ch: ch}, nil
}

func (c *Conn) Close() error {
	if c.Ch != nil {
		_ = c.Ch.Close()
	}
	if c.Conn != nil {
		return c.Conn.Close()
	}
	return nil
}

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends each event as persistent JSON, routed by its event name.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
}

func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, e domoutbox.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("rabbit: encode %s: %w", e.EventName(), err)
	}

	// amqp channels are not safe for concurrent publishing.
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, e.EventName(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Type:         e.EventName(),
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("rabbit: publish %s: %w", e.EventName(), err)
	}
	return nil
}
