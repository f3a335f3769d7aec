package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	amqp "github.com/rabbitmq/amqp091-go"

	"account-service/internal/domain"
	"account-service/internal/ids"
)

const (
	DefaultUserEventQueue = "user_event.queue"

	headerEvent    = "x-event"
	headerServices = "x-services"
	allServices    = "*"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends user events to a durable queue through the default exchange.
type Publisher struct {
	conn  *amqp.Connection
	ch    channel
	queue string
	mu    sync.Mutex
}

func Dial(url, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultUserEventQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func newPublisher(ch channel, queue string) *Publisher {
	return &Publisher{ch: ch, queue: queue}
}

func (p *Publisher) PublishUserEvent(ctx context.Context, event domain.UserEvent) error {
	msg, err := newUserEventPublishing(event, time.Now())
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "AMQP.PublishUserEvent", func(ctx context.Context) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err := p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
			return fmt.Errorf("failed to publish %s: %w", event.Type, err)
		}
		return nil
	})
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func newUserEventPublishing(event domain.UserEvent, now time.Time) (amqp.Publishing, error) {
	if event.Type == "" {
		return amqp.Publishing{}, fmt.Errorf("%w: event type is required", domain.ErrInvalidInput)
	}
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		Headers: amqp.Table{
			headerEvent:    string(event.Type),
			headerServices: allServices,
		},
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ids.New(),
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}
