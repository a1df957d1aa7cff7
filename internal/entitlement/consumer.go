package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/accessentitlement/platform/internal/broker"
)

// RunResultConsumerLoop drains ValidationResult deliveries from a
// broker.ResultConsumer and applies each to Service. It acks on success,
// on a stale request_id, and on a mismatched result (all three mean "this
// message will never apply cleanly, stop redelivering it"); anything else
// nacks without requeue, leaving the message to the queue's dead-letter
// configuration.
func RunResultConsumerLoop(ctx context.Context, consumer broker.ResultConsumer, svc *Service) error {
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
			handleResultDelivery(ctx, d, svc)
		}
	}
}

func handleResultDelivery(ctx context.Context, d broker.Delivery, svc *Service) {
	var result broker.ValidationResult
	if err := json.Unmarshal(d.Body, &result); err != nil {
		slog.Warn("entitlement: malformed validation result, dropping", "error", err)
		if nackErr := d.Nack(false); nackErr != nil {
			slog.Warn("entitlement: failed to nack malformed delivery", "error", nackErr)
		}
		return
	}

	err := svc.ApplyValidationResult(ctx, result)
	switch {
	case err == nil, errors.Is(err, ErrResultStale), errors.Is(err, ErrResultMismatch):
		if ackErr := d.Ack(); ackErr != nil {
			slog.Warn("entitlement: failed to ack validation result", "request_id", result.RequestID, "error", ackErr)
		}
	default:
		slog.Warn("entitlement: failed to apply validation result, dropping", "request_id", result.RequestID, "error", err)
		if nackErr := d.Nack(false); nackErr != nil {
			slog.Warn("entitlement: failed to nack validation result", "request_id", result.RequestID, "error", nackErr)
		}
	}
}
