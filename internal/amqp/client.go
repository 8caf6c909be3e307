package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Client is a thin wrapper over one AMQP connection and channel, bound to a
// single durable exchange/queue pair.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key equals the queue name on a direct exchange.
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishTransactionRecorded announces a persisted transaction to the queue.
func (c *Client) PublishTransactionRecorded(ctx context.Context, msg TransactionRecordedMessage) error {
	if err := c.publish(ctx, TypeTransactionRecorded, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published transaction recorded message",
		"id", msg.ID,
		"category", msg.Category,
		"exchange", c.exchangeName)
	return nil
}

// PublishPlanApplied announces that an allocation run updated limits.
func (c *Client) PublishPlanApplied(ctx context.Context, msg PlanAppliedMessage) error {
	if err := c.publish(ctx, TypePlanApplied, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published plan applied message",
		"income_cents", msg.IncomeCents,
		"category_count", msg.CategoryCount,
		"exchange", c.exchangeName)
	return nil
}

func (c *Client) publish(ctx context.Context, t MessageType, payload any) error {
	env, err := Wrap(t, payload)
	if err != nil {
		return err
	}
	body, err := env.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		c.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Handlers routes consumed envelopes by message type. A nil handler drops the
// message with an ack.
type Handlers struct {
	OnTransactionRecorded func(*TransactionRecordedMessage) error
	OnPlanApplied         func(*PlanAppliedMessage) error
}

// Consume reads envelopes from the queue until ctx is cancelled. Messages
// that fail to decode are rejected without requeue; handler errors requeue.
func (c *Client) Consume(ctx context.Context, h Handlers) error {
	msgs, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // auto-ack off, we ack manually
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			env, err := EnvelopeFromJSON(delivery.Body)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal envelope", "error", err)
				delivery.Nack(false, false)
				continue
			}

			if err := c.dispatch(env, h); err != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"type", env.Type)
				delivery.Nack(false, true)
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) dispatch(env *Envelope, h Handlers) error {
	switch env.Type {
	case TypeTransactionRecorded:
		if h.OnTransactionRecorded == nil {
			return nil
		}
		var msg TransactionRecordedMessage
		if err := env.Decode(TypeTransactionRecorded, &msg); err != nil {
			return err
		}
		return h.OnTransactionRecorded(&msg)
	case TypePlanApplied:
		if h.OnPlanApplied == nil {
			return nil
		}
		var msg PlanAppliedMessage
		if err := env.Decode(TypePlanApplied, &msg); err != nil {
			return err
		}
		return h.OnPlanApplied(&msg)
	default:
		// Unknown types are acked and dropped so a newer producer cannot
		// wedge an older consumer.
		slog.Warn("Dropping message of unknown type", "type", env.Type)
		return nil
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
