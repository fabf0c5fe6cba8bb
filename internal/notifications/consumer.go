package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"sonicpods/internal/catalog"
	"sonicpods/internal/messaging"
	"sonicpods/internal/orders"

	amqp "github.com/rabbitmq/amqp091-go"
)

const consumerTag = "notifications-service"

// Queues lists every queue the worker drains.
var Queues = []string{catalog.EventsQueue, orders.EventsQueue}

type Consumer struct {
	channel *amqp.Channel
	queues  []string
	logger  *slog.Logger
}

func NewConsumer(conn *amqp.Connection, logger *slog.Logger, queues ...string) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	for _, q := range queues {
		if err := messaging.DeclareQueue(ch, q); err != nil {
			_ = ch.Close()
			return nil, err
		}
	}

	return &Consumer{
		channel: ch,
		queues:  queues,
		logger:  logger,
	}, nil
}

type delivery struct {
	queue string
	msg   amqp.Delivery
}

func (c *Consumer) Listen(ctx context.Context) error {
	merged := make(chan delivery)
	for _, q := range c.queues {
		msgs, err := c.channel.Consume(
			q,
			consumerTag+"-"+q,
			false, // manual ack
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("consume queue %q: %w", q, err)
		}
		go func(queue string, msgs <-chan amqp.Delivery) {
			for msg := range msgs {
				select {
				case merged <- delivery{queue: queue, msg: msg}:
				case <-ctx.Done():
					return
				}
			}
		}(q, msgs)
	}

	closed := c.channel.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return nil
			}
			return fmt.Errorf("channel closed: %w", amqpErr)
		case d := <-merged:
			if err := c.handleMessage(d.queue, d.msg.Body); err != nil {
				c.logger.Error("handle message failed", "queue", d.queue, "error", err)
				// Undecodable payloads are dropped, not requeued.
				_ = d.msg.Nack(false, false)
				continue
			}
			_ = d.msg.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(queue string, body []byte) error {
	switch queue {
	case catalog.EventsQueue:
		var event catalog.ProductEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("unmarshal product event: %w", err)
		}
		if event.EventType == "" || event.ProductID == "" {
			return fmt.Errorf("incomplete product event: %s", body)
		}
		c.logger.Info("notification event",
			"event_type", event.EventType,
			"product_id", event.ProductID,
			"name", event.Name,
			"slug", event.Slug,
			"fallback", event.Fallback,
			"timestamp", event.Timestamp,
		)
	case orders.EventsQueue:
		var event orders.OrderEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("unmarshal order event: %w", err)
		}
		if event.EventType == "" || event.OrderID == "" {
			return fmt.Errorf("incomplete order event: %s", body)
		}
		c.logger.Info("notification event",
			"event_type", event.EventType,
			"order_id", event.OrderID,
			"email", event.Email,
			"status", event.Status,
			"total_amount", event.TotalAmount,
			"fallback", event.Fallback,
			"timestamp", event.Timestamp,
		)
	default:
		return fmt.Errorf("unexpected queue %q", queue)
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
