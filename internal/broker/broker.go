package broker

import "context"

// Delivery wraps one received message with the ack/nack operations the
// consumer loop needs: explicit ack, and nack with or without requeue.
type Delivery struct {
	Body []byte
	// Ack acknowledges successful processing.
	Ack func() error
	// Nack rejects the message. requeue=false drops (or dead-letters) it;
	// requeue=true redelivers it for another attempt.
	Nack func(requeue bool) error
}

// JobPublisher publishes ValidationJob messages to validation_queue with
// persistent delivery mode so messages survive a broker restart.
type JobPublisher interface {
	PublishJob(ctx context.Context, job ValidationJob) error
	Close() error
}

// JobConsumer delivers ValidationJob messages to V's consumer loop
// one at a time per worker (prefetch=1).
type JobConsumer interface {
	// Consume returns a channel of deliveries. The channel closes when the
	// consumer's cooperative stop signal (ctx.Done) fires and the
	// in-flight message finishes processing.
	Consume(ctx context.Context) (<-chan Delivery, error)
	Close() error
}

// ResultPublisher publishes ValidationResult messages to result_queue
// once an evaluation outcome has been decided.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result ValidationResult) error
	Close() error
}

// ResultConsumer delivers ValidationResult messages to UE's consumer loop
// once the outcome has been durably recorded.
type ResultConsumer interface {
	Consume(ctx context.Context) (<-chan Delivery, error)
	Close() error
}
