package gateway

// Wire shapes mirrored from the catalog and entitlement services' own
// DTOs. The gateway intentionally does not import those packages; it only
// knows their JSON shapes.

type resource struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

type access struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type conflict struct {
	GroupIDA int64 `json:"group_id_a"`
	GroupIDB int64 `json:"group_id_b"`
}

type accessWithResources struct {
	access
	Resources []resource `json:"resources"`
}

type activeGroupRef struct {
	ID   int64   `json:"id"`
	Name *string `json:"name,omitempty"`
}

type userEntitlement struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	Kind       string  `json:"kind"`
	ItemID     int64   `json:"item_id"`
	ItemName   *string `json:"item_name,omitempty"`
	Status     string  `json:"status"`
	RequestID  string  `json:"request_id"`
	AssignedAt *string `json:"assigned_at,omitempty"`
}

// permissions is UE's GetPermissions shape, enriched in-place with catalog
// names for any entitlement missing item_name (see Service.GetPermissions).
type permissions struct {
	UserID   int64             `json:"user_id"`
	Groups   []userEntitlement `json:"groups"`
	Accesses []userEntitlement `json:"accesses"`
}

type createRequestBody struct {
	UserID         int64   `json:"user_id" binding:"required"`
	PermissionType string  `json:"permission_type" binding:"required"`
	ItemID         int64   `json:"item_id" binding:"required"`
	ItemName       *string `json:"item_name"`
}

type createRequestResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

type revokeRequestBody struct {
	PermissionType string `json:"permission_type" binding:"required"`
	ItemID         int64  `json:"item_id" binding:"required"`
}

type revokeResponse struct {
	Status string `json:"status"`
}
