// Package messaging publishes domain events to durable RabbitMQ queues.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const contentTypeJSON = "application/json"

// RabbitPublisher sends events of type T as JSON to one queue. An
// amqp.Channel is not safe for concurrent publishing, so sends are
// serialized.
type RabbitPublisher[T any] struct {
	mu      sync.Mutex
	channel *amqp.Channel
	queue   string
}

func NewRabbitPublisher[T any](conn *amqp.Connection, queue string) (*RabbitPublisher[T], error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := DeclareQueue(ch, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}

	return &RabbitPublisher[T]{
		channel: ch,
		queue:   queue,
	}, nil
}

// DeclareQueue declares a durable, non-exclusive queue.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %q: %w", queue, err)
	}
	return nil
}

func (p *RabbitPublisher[T]) Publish(ctx context.Context, event T) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(
		ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  contentTypeJSON,
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	); err != nil {
		return fmt.Errorf("publish to %q: %w", p.queue, err)
	}

	return nil
}

func (p *RabbitPublisher[T]) Close() error {
	return p.channel.Close()
}

// Nop drops every event. It stands in when no broker is configured.
type Nop[T any] struct{}

func (Nop[T]) Publish(context.Context, T) error { return nil }
