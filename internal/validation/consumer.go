package validation

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/accessentitlement/platform/internal/broker"
)

// RunConsumerLoop drains ValidationJob deliveries, evaluates each with
// engine, and publishes the outcome. A malformed job or any failure before
// the message is acked nacks without requeue: the job never partially
// retries from the middle of evaluation.
func RunConsumerLoop(ctx context.Context, consumer broker.JobConsumer, publisher broker.ResultPublisher, engine *Engine) error {
	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			handleJobDelivery(ctx, d, publisher, engine)
		}
	}
}

func handleJobDelivery(ctx context.Context, d broker.Delivery, publisher broker.ResultPublisher, engine *Engine) {
	var job broker.ValidationJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		slog.Warn("validation: malformed job, dropping", "error", err)
		nack(d)
		return
	}

	result := engine.Evaluate(ctx, job)

	if err := publisher.PublishResult(ctx, result); err != nil {
		slog.Warn("validation: failed to publish result, dropping job", "request_id", job.RequestID, "error", err)
		nack(d)
		return
	}

	if err := d.Ack(); err != nil {
		slog.Warn("validation: failed to ack job", "request_id", job.RequestID, "error", err)
	}
}

func nack(d broker.Delivery) {
	if err := d.Nack(false); err != nil {
		slog.Warn("validation: failed to nack job", "error", err)
	}
}
