// Package entitlement implements User-Entitlement: the UserEntitlement
// state machine, the broker-mediated request/result protocol, and the
// per-user active-groups cache.
package entitlement

import "time"

// Kind mirrors broker.Kind; duplicated here (rather than imported) so this
// package's domain model has no dependency on the broker wire format.
type Kind string

const (
	KindAccess Kind = "access"
	KindGroup  Kind = "group"
)

func (k Kind) Valid() bool {
	return k == KindAccess || k == KindGroup
}

// Status is one of the four UserEntitlement lifecycle states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusRevoked  Status = "revoked"
	StatusRejected Status = "rejected"
)

// User is the subject requesting entitlements.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
}

// UserEntitlement is one row of the (user_id, kind, item_id) uniqueness
// space. JobPublished tracks whether the "commit, then publish" step
// succeeded, driving the republish scan.
type UserEntitlement struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	Kind         Kind       `json:"kind" db:"kind"`
	ItemID       int64      `json:"item_id" db:"item_id"`
	ItemName     *string    `json:"item_name,omitempty" db:"item_name"`
	Status       Status     `json:"status" db:"status"`
	RequestID    string     `json:"request_id" db:"request_id"`
	AssignedAt   *time.Time `json:"assigned_at,omitempty" db:"assigned_at"`
	JobPublished bool       `json:"-" db:"job_published"`
}

// IsActiveOrPending reports whether re-creating a request for this row's
// triple must be rejected.
func (e UserEntitlement) IsActiveOrPending() bool {
	return e.Status == StatusActive || e.Status == StatusPending
}

// IsReusable reports whether this row is reused on re-request rather than
// a fresh row being inserted.
func (e UserEntitlement) IsReusable() bool {
	return e.Status == StatusRevoked || e.Status == StatusRejected
}
