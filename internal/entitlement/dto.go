package entitlement

// Request/response DTOs for UE's HTTP surface, validated at the boundary
// via gin's binding tags.

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
}

type createRequestBody struct {
	UserID         int64   `json:"user_id" binding:"required"`
	PermissionType Kind    `json:"permission_type" binding:"required"`
	ItemID         int64   `json:"item_id" binding:"required"`
	ItemName       *string `json:"item_name"`
}

type revokeRequestBody struct {
	PermissionType Kind  `json:"permission_type" binding:"required"`
	ItemID         int64 `json:"item_id" binding:"required"`
}

type createRequestResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
}

type revokeResponse struct {
	Status string `json:"status"`
}
