// Package validation is the Validation (V) service: a stateless consumer
// of validation_queue that runs the conflict predicate against
// Access-Catalog and User-Entitlement, then publishes the outcome.
package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/accessentitlement/platform/internal/broker"
	"github.com/accessentitlement/platform/internal/validation/cache"
	"github.com/accessentitlement/platform/internal/validation/clients"
)

// TTLs bundles the cache-key TTLs V mirrors.
type TTLs struct {
	ConflictsMatrix time.Duration
	AccessGroups    time.Duration
	ActiveGroups    time.Duration
}

// Engine evaluates the conflict predicate for one ValidationJob.
type Engine struct {
	catalog     *clients.CatalogClient
	entitlement *clients.EntitlementClient
	mirror      *cache.Mirror
	ttl         TTLs
}

func NewEngine(catalog *clients.CatalogClient, entitlement *clients.EntitlementClient, mirror *cache.Mirror, ttl TTLs) *Engine {
	return &Engine{catalog: catalog, entitlement: entitlement, mirror: mirror, ttl: ttl}
}

// Evaluate implements the conflict predicate: approve(U,T,C) = (U x T) ∩ C
// = ∅. Any failure reaching AC or UE is not propagated as an error: it is
// folded into an unapproved result with an explanatory reason, so the
// request leaves pending (UE marks it rejected) instead of blocking the
// consumer loop.
func (e *Engine) Evaluate(ctx context.Context, job broker.ValidationJob) broker.ValidationResult {
	result := broker.ValidationResult{
		RequestID: job.RequestID,
		UserID:    job.UserID,
		Kind:      job.Kind,
		ItemID:    job.ItemID,
	}

	held, err := e.activeGroups(ctx, job.UserID)
	if err != nil {
		result.Reason = fmt.Sprintf("error fetching data: %v", err)
		return result
	}

	target, err := e.targetGroups(ctx, job)
	if err != nil {
		result.Reason = fmt.Sprintf("error fetching data: %v", err)
		return result
	}
	if job.Kind == broker.KindAccess && len(target) == 0 {
		result.Reason = fmt.Sprintf("no groups found for access %d", job.ItemID)
		return result
	}

	conflicts, err := e.conflictMatrix(ctx)
	if err != nil {
		result.Reason = fmt.Sprintf("error fetching data: %v", err)
		return result
	}

	approved, reason := checkConflicts(held, target, conflicts)
	result.Approved = approved
	result.Reason = reason
	return result
}

func (e *Engine) activeGroups(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	key := cache.KeyActiveGroups(userID)
	groups, err := cache.ReadThrough(ctx, e.mirror, key, e.ttl.ActiveGroups, func(ctx context.Context) ([]clients.ActiveGroup, error) {
		return e.entitlement.CurrentActiveGroups(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return toSet(groups, func(g clients.ActiveGroup) int64 { return g.ID }), nil
}

func (e *Engine) targetGroups(ctx context.Context, job broker.ValidationJob) (map[int64]struct{}, error) {
	if job.Kind == broker.KindGroup {
		return map[int64]struct{}{job.ItemID: {}}, nil
	}

	key := cache.KeyAccessGroups(job.ItemID)
	groups, err := cache.ReadThrough(ctx, e.mirror, key, e.ttl.AccessGroups, func(ctx context.Context) ([]clients.Group, error) {
		return e.catalog.AccessGroups(ctx, job.ItemID)
	})
	if err != nil {
		return nil, err
	}
	return toSet(groups, func(g clients.Group) int64 { return g.ID }), nil
}

func (e *Engine) conflictMatrix(ctx context.Context) ([]clients.Conflict, error) {
	return cache.ReadThrough(ctx, e.mirror, cache.KeyConflictsMatrix(), e.ttl.ConflictsMatrix, func(ctx context.Context) ([]clients.Conflict, error) {
		return e.catalog.ConflictMatrix(ctx)
	})
}

// checkConflicts reports the first conflict edge found between held and
// target, scanned in the order conflicts was returned. Empty held or
// target sets can never conflict.
func checkConflicts(held, target map[int64]struct{}, conflicts []clients.Conflict) (bool, string) {
	if len(held) == 0 || len(target) == 0 {
		return true, ""
	}
	for _, c := range conflicts {
		if _, ok := held[c.GroupIDA]; ok {
			if _, ok := target[c.GroupIDB]; ok {
				return false, fmt.Sprintf("user holds group %d, request implies group %d", c.GroupIDA, c.GroupIDB)
			}
		}
		if _, ok := held[c.GroupIDB]; ok {
			if _, ok := target[c.GroupIDA]; ok {
				return false, fmt.Sprintf("user holds group %d, request implies group %d", c.GroupIDB, c.GroupIDA)
			}
		}
	}
	return true, ""
}

func toSet[T any](items []T, id func(T) int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(items))
	for _, it := range items {
		out[id(it)] = struct{}{}
	}
	return out
}
