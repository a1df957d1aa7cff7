package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/accessentitlement/platform/internal/broker"
	apperrors "github.com/accessentitlement/platform/internal/pkg/errors"
)

// ErrResultStale is returned by ApplyValidationResult when no row matches
// the result's request_id: the request was deleted, or a redelivered
// message arrived after the row was already gone.
var ErrResultStale = errors.New("entitlement: stale or unknown request_id")

// ErrResultMismatch is returned when the result's user/kind/item disagree
// with the stored row — a malformed or misrouted result.
var ErrResultMismatch = errors.New("entitlement: result does not match stored request")

// Publisher is the narrow slice of broker.JobPublisher CreateRequest needs,
// kept separate so tests can supply a trivial fake.
type Publisher interface {
	PublishJob(ctx context.Context, job broker.ValidationJob) error
}

// Service owns the pending/active/revoked/rejected entitlement lifecycle:
// accepting requests, applying validation results, and serving the
// permission views users and the validation engine read.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	cacheTTL  time.Duration
	now       func() time.Time
}

func NewService(repo Repository, cache Cache, publisher Publisher, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, cache: cache, publisher: publisher, cacheTTL: cacheTTL, now: time.Now}
}

// CreateRequest records a pending entitlement request (reusing a revoked or
// rejected row for the same triple, refusing with a conflict when one is
// already pending or active) and enqueues a validation job for it. The request_id is returned once the
// durable write succeeds; a publish failure is logged but never surfaces
// to the caller — the row stays unpublished for the republish scan to
// pick up later.
func (s *Service) CreateRequest(ctx context.Context, userID int64, kind Kind, itemID int64, itemName *string) (string, error) {
	requestID := uuid.NewString()

	row, err := s.repo.CreateOrReuseRequest(ctx, userID, kind, itemID, itemName, requestID)
	if err != nil {
		if errors.Is(err, ErrAlreadyActiveOrPending) {
			return "", apperrors.Conflict("already_pending_or_active", "a pending or active request already exists for this item")
		}
		return "", err
	}

	if pubErr := s.publisher.PublishJob(ctx, broker.ValidationJob{
		RequestID: row.RequestID,
		UserID:    userID,
		Kind:      broker.Kind(kind),
		ItemID:    itemID,
	}); pubErr != nil {
		slog.Warn("entitlement: failed to publish validation job, request stays pending for republish",
			"request_id", row.RequestID, "user_id", userID, "error", pubErr)
		if markErr := s.repo.MarkJobPublished(ctx, row.ID, false); markErr != nil {
			slog.Warn("entitlement: failed to record unpublished job", "request_id", row.RequestID, "error", markErr)
		}
		return row.RequestID, nil
	}

	if err := s.repo.MarkJobPublished(ctx, row.ID, true); err != nil {
		slog.Warn("entitlement: failed to record published job", "request_id", row.RequestID, "error", err)
	}
	return row.RequestID, nil
}

// ApplyValidationResult applies a validation outcome to the matching
// request. Callers (the broker consumer loop) must ack on ErrResultStale,
// ErrResultMismatch, or nil, and nack without requeue on any other error.
func (s *Service) ApplyValidationResult(ctx context.Context, result broker.ValidationResult) error {
	row, err := s.repo.FindByRequestID(ctx, result.RequestID)
	if errors.Is(err, ErrNotFound) {
		slog.Warn("entitlement: validation result for unknown request_id, acking", "request_id", result.RequestID)
		return ErrResultStale
	}
	if err != nil {
		return err
	}

	if row.UserID != result.UserID || row.Kind != Kind(result.Kind) || row.ItemID != result.ItemID {
		slog.Warn("entitlement: validation result does not match stored request, acking",
			"request_id", result.RequestID, "stored_user_id", row.UserID, "result_user_id", result.UserID)
		return ErrResultMismatch
	}

	if err := s.repo.ApplyResult(ctx, row.ID, result.Approved, s.now()); err != nil {
		return err
	}

	if row.Kind == KindGroup {
		if err := s.cache.Delete(ctx, keyActiveGroups(row.UserID)); err != nil {
			slog.Warn("entitlement: failed to invalidate active-groups cache", "user_id", row.UserID, "error", err)
		}
	}
	return nil
}

// RevokePermission revokes an active or pending entitlement synchronously;
// no broker round trip is involved.
func (s *Service) RevokePermission(ctx context.Context, userID int64, kind Kind, itemID int64) error {
	row, err := s.repo.FindActiveOrPendingByTriple(ctx, userID, kind, itemID)
	if errors.Is(err, ErrNotFound) {
		return apperrors.NotFound("entitlement_not_found", "no active or pending entitlement for that item")
	}
	if err != nil {
		return err
	}

	if err := s.repo.Revoke(ctx, row.ID, s.now()); err != nil {
		return err
	}

	if kind == KindGroup {
		if err := s.cache.Delete(ctx, keyActiveGroups(userID)); err != nil {
			slog.Warn("entitlement: failed to invalidate active-groups cache on revoke", "user_id", userID, "error", err)
		}
	}
	return nil
}

// Permissions is the partitioned view GetPermissions returns.
type Permissions struct {
	UserID   int64             `json:"user_id"`
	Groups   []UserEntitlement `json:"groups"`
	Accesses []UserEntitlement `json:"accesses"`
}

func (s *Service) GetPermissions(ctx context.Context, userID int64) (Permissions, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Permissions{}, err
	}
	out := Permissions{UserID: userID, Groups: []UserEntitlement{}, Accesses: []UserEntitlement{}}
	for _, row := range rows {
		if row.Kind == KindGroup {
			out.Groups = append(out.Groups, row)
		} else {
			out.Accesses = append(out.Accesses, row)
		}
	}
	return out, nil
}

// ActiveGroupRef is the cached shape of one active group entitlement.
type ActiveGroupRef struct {
	ID   int64   `json:"id"`
	Name *string `json:"name,omitempty"`
}

// GetCurrentActiveGroups is a read-through cache over the user's active
// group memberships, keyed by user:{id}:active_groups.
func (s *Service) GetCurrentActiveGroups(ctx context.Context, userID int64) ([]ActiveGroupRef, error) {
	key := keyActiveGroups(userID)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached []ActiveGroupRef
		if decodeErr := json.Unmarshal(raw, &cached); decodeErr == nil {
			return cached, nil
		}
		_ = s.cache.Delete(ctx, key)
	}

	rows, err := s.repo.ListActiveGroupsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ActiveGroupRef, 0, len(rows))
	for _, row := range rows {
		out = append(out, ActiveGroupRef{ID: row.ItemID, Name: row.ItemName})
	}

	if encoded, encErr := json.Marshal(out); encErr == nil {
		if setErr := s.cache.Set(ctx, key, encoded, s.cacheTTL); setErr != nil {
			slog.Warn("entitlement: failed to populate active-groups cache", "user_id", userID, "error", setErr)
		}
	}
	return out, nil
}

// CreateUser provisions a new user record for admin onboarding.
func (s *Service) CreateUser(ctx context.Context, username string) (User, error) {
	if username == "" || len(username) > 50 {
		return User{}, apperrors.BadRequest("invalid_username", "username must be non-empty and <= 50 chars")
	}
	u, err := s.repo.CreateUser(ctx, username)
	if err != nil {
		return User{}, apperrors.Conflict("duplicate_username", "username must be unique").WithCause(err)
	}
	return u, nil
}
