package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/emilythestrangee/queryhub/backend/internal/observability"
)

const (
	dialTimeout    = 2 * time.Second
	redialInterval = 30 * time.Second
)

// ErrBrokerBackoff is returned while the publisher waits to redial after a
// failed connection attempt.
var ErrBrokerBackoff = errors.New("rabbitmq unavailable, retry pending")

// AMQPPublisher publishes each event type to a durable queue of the same
// name through the default exchange. The connection is opened lazily and
// reopened after a failure, at most once per redialInterval.
type AMQPPublisher struct {
	url string
	now func() time.Time

	mu        sync.Mutex
	conn      *amqp.Connection
	ch        *amqp.Channel
	declared  map[string]bool
	nextDial  time.Time
	lastError error
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{url: url, now: time.Now, declared: make(map[string]bool)}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	queue := event.EventType()
	if !p.declared[queue] {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("queue declare %s: %w", queue, err)
		}
		p.declared[queue] = true
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", queue, err)
	}
	return nil
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if now := p.now(); now.Before(p.nextDial) {
		return nil, fmt.Errorf("%w: %v", ErrBrokerBackoff, p.lastError)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, p.failed(fmt.Errorf("rabbitmq dial: %w", err))
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, p.failed(fmt.Errorf("rabbitmq channel: %w", err))
	}

	p.conn, p.ch = conn, ch
	p.nextDial, p.lastError = time.Time{}, nil
	return ch, nil
}

func (p *AMQPPublisher) failed(err error) error {
	p.nextDial = p.now().Add(redialInterval)
	p.lastError = err
	return err
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.conn, p.ch = nil, nil
	p.declared = make(map[string]bool)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}

// BestEffort wraps a Publisher so failures are logged and counted, never returned.
type BestEffort struct {
	Next Publisher
}

func (b BestEffort) Publish(ctx context.Context, event Event) error {
	if b.Next == nil {
		return nil
	}
	if err := b.Next.Publish(ctx, event); err != nil {
		observability.EventsPublished.WithLabelValues(event.EventType(), "failed").Inc()
		observability.FromContext(ctx).Warn("event publish failed", "event_type", event.EventType(), "error", err)
		return nil
	}
	observability.EventsPublished.WithLabelValues(event.EventType(), "ok").Inc()
	return nil
}

func (b BestEffort) Close() error {
	if b.Next == nil {
		return nil
	}
	return b.Next.Close()
}

// Guard makes p best-effort. A nil p drops events.
func Guard(p Publisher) Publisher {
	switch p.(type) {
	case nil:
		return Noop{}
	case Noop, BestEffort, *BestEffort:
		return p
	}
	return BestEffort{Next: p}
}

// NewPublisher returns a best-effort AMQP publisher, or a no-op one when url is empty.
func NewPublisher(url string) Publisher {
	if url == "" {
		return Noop{}
	}
	return BestEffort{Next: NewAMQPPublisher(url)}
}
