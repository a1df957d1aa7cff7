package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/accessentitlement/platform/internal/broker"
)

// Republisher periodically rescans pending rows whose validation job never
// made it to the broker and retries the publish. It closes the operational
// gap left by a publish failure after commit: the row stays pending and
// observable, and this scan is what eventually republishes it.
type Republisher struct {
	repo      Repository
	publisher Publisher
	interval  time.Duration
}

func NewRepublisher(repo Repository, publisher Publisher, interval time.Duration) *Republisher {
	return &Republisher{repo: repo, publisher: publisher, interval: interval}
}

// Run blocks, scanning every interval until ctx is cancelled.
func (r *Republisher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.scanOnce(ctx)
		}
	}
}

func (r *Republisher) scanOnce(ctx context.Context) {
	rows, err := r.repo.ListUnpublishedPending(ctx)
	if err != nil {
		slog.Warn("entitlement: republish scan failed to list pending rows", "error", err)
		return
	}
	for _, row := range rows {
		job := broker.ValidationJob{
			RequestID: row.RequestID,
			UserID:    row.UserID,
			Kind:      broker.Kind(row.Kind),
			ItemID:    row.ItemID,
		}
		if err := r.publisher.PublishJob(ctx, job); err != nil {
			slog.Warn("entitlement: republish attempt failed, will retry next scan",
				"request_id", row.RequestID, "error", err)
			continue
		}
		if err := r.repo.MarkJobPublished(ctx, row.ID, true); err != nil {
			slog.Warn("entitlement: failed to mark republished job", "request_id", row.RequestID, "error", err)
		}
	}
}
