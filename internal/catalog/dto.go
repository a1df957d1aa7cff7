package catalog

// Request/response DTOs for AC's HTTP surface, validated at the boundary
// via gin's binding tags.

type createResourceRequest struct {
	Name        string       `json:"name" binding:"required"`
	Type        ResourceType `json:"type" binding:"required"`
	Description *string      `json:"description"`
}

type createAccessRequest struct {
	Name string `json:"name" binding:"required"`
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type addResourceRequest struct {
	ResourceID int64 `json:"resource_id" binding:"required"`
}

type conflictRequest struct {
	GroupID1 int64 `json:"group_id1" binding:"required"`
	GroupID2 int64 `json:"group_id2" binding:"required"`
}
