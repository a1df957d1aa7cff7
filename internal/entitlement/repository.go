package entitlement

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyActiveOrPending is returned by CreateOrReuseRequest when an
// existing row for the triple already blocks re-creation.
var ErrAlreadyActiveOrPending = errors.New("entitlement: already pending or active")

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("entitlement: not found")

// Repository is the durable store UE's Service depends on. CreateOrReuseRequest
// and ApplyResult each execute their multi-step algorithm as a single unit
// of work (acquire session, run, commit, release).
type Repository interface {
	CreateUser(ctx context.Context, username string) (User, error)

	// CreateOrReuseRequest looks up the row for (userID, kind, itemID); if
	// active/pending it returns ErrAlreadyActiveOrPending; if
	// revoked/rejected it reuses the row with newRequestID and
	// status<-pending, assigned_at<-null; otherwise it inserts a fresh
	// pending row. All inside one transaction.
	CreateOrReuseRequest(ctx context.Context, userID int64, kind Kind, itemID int64, itemName *string, newRequestID string) (UserEntitlement, error)

	// MarkJobPublished records whether the broker publish after create
	// succeeded, driving the republish scan: if it failed, the job can be
	// republished later.
	MarkJobPublished(ctx context.Context, id int64, published bool) error

	FindByRequestID(ctx context.Context, requestID string) (UserEntitlement, error)

	// ApplyResult moves an approved row to active with assigned_at<-now,
	// and a rejected one to rejected with no timestamp change. Idempotent:
	// re-applying the same result is a no-op once the row is already in
	// the target state.
	ApplyResult(ctx context.Context, id int64, approved bool, now time.Time) error

	FindActiveOrPendingByTriple(ctx context.Context, userID int64, kind Kind, itemID int64) (UserEntitlement, error)

	// Revoke sets status<-revoked and assigned_at<-now.
	Revoke(ctx context.Context, id int64, now time.Time) error

	ListByUser(ctx context.Context, userID int64) ([]UserEntitlement, error)
	ListActiveGroupsByUser(ctx context.Context, userID int64) ([]UserEntitlement, error)

	// ListUnpublishedPending finds pending rows whose validation job never
	// made it to the broker, for the republish scan.
	ListUnpublishedPending(ctx context.Context) ([]UserEntitlement, error)
}
