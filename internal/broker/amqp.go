package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPChannel pairs one live *amqp.Connection with the single *amqp.Channel
// the publisher and consumer wrappers use: one channel per logical role.
// Unit tests do not use it; they use the in-process fakes in fake.go.
type AMQPChannel struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	name string
}

// DialAMQPChannel opens one connection and one channel for a single logical
// role (publisher or consumer) — at most one channel per role — and
// declares the durable queue it will use.
func DialAMQPChannel(uri, queue, roleName string) (*AMQPChannel, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("broker: dial %s: %w", roleName, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("broker: open channel %s: %w", roleName, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("broker: declare queue %s: %w", queue, err)
	}
	return &AMQPChannel{conn: conn, ch: ch, name: roleName}, nil
}

func (a *AMQPChannel) Close() error {
	var err error
	if cerr := a.ch.Close(); cerr != nil {
		err = cerr
	}
	if cerr := a.conn.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// amqpJobPublisher publishes ValidationJob messages with persistent
// delivery mode; both message kinds are durable.
type amqpJobPublisher struct {
	ch    *AMQPChannel
	queue string
}

func NewAMQPJobPublisher(ch *AMQPChannel, queue string) JobPublisher {
	return &amqpJobPublisher{ch: ch, queue: queue}
}

func (p *amqpJobPublisher) PublishJob(ctx context.Context, job ValidationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("broker: marshal validation job: %w", err)
	}
	return p.ch.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *amqpJobPublisher) Close() error { return p.ch.Close() }

type amqpResultPublisher struct {
	ch    *AMQPChannel
	queue string
}

func NewAMQPResultPublisher(ch *AMQPChannel, queue string) ResultPublisher {
	return &amqpResultPublisher{ch: ch, queue: queue}
}

func (p *amqpResultPublisher) PublishResult(ctx context.Context, result ValidationResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("broker: marshal validation result: %w", err)
	}
	return p.ch.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (p *amqpResultPublisher) Close() error { return p.ch.Close() }

// amqpConsumer implements both JobConsumer and ResultConsumer: structurally
// they're the same wiring (prefetch=1, explicit ack, cooperative stop).
type amqpConsumer struct {
	ch       *AMQPChannel
	queue    string
	prefetch int
}

func NewAMQPConsumer(ch *AMQPChannel, queue string, prefetch int) *amqpConsumer {
	return &amqpConsumer{ch: ch, queue: queue, prefetch: prefetch}
}

// Consume subscribes with prefetch enforced via Qos: one in-flight message
// per consumer. The returned channel is closed as soon as the cooperative
// stop signal fires or amqp's delivery channel closes; a delivery received
// but not yet handed over when the stop signal fires is nacked with requeue.
func (c *amqpConsumer) Consume(ctx context.Context) (<-chan Delivery, error) {
	if err := c.ch.ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("broker: set qos: %w", err)
	}
	deliveries, err := c.ch.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("broker: consume %s: %w", c.queue, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				dd := d
				delivery := Delivery{
					Body: dd.Body,
					Ack:  func() error { return dd.Ack(false) },
					Nack: func(requeue bool) error { return dd.Nack(false, requeue) },
				}
				select {
				case out <- delivery:
				case <-ctx.Done():
					if nerr := dd.Nack(false, true); nerr != nil {
						slog.Warn("broker: nack on shutdown failed", "queue", c.queue, "error", nerr)
					}
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *amqpConsumer) Close() error { return c.ch.Close() }
