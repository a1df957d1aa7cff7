package catalog

import "context"

// Repository is the durable store the catalog Service depends on. The
// Postgres implementation lives in internal/catalog/postgres; tests use
// in-memory doubles against the same interface.
type Repository interface {
	// Resources
	CreateResource(ctx context.Context, r Resource) (Resource, error)
	GetResource(ctx context.Context, id int64) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
	DeleteResource(ctx context.Context, id int64) error
	ResourceHasAccesses(ctx context.Context, id int64) (bool, error)

	// Accesses
	CreateAccess(ctx context.Context, a Access) (Access, error)
	GetAccess(ctx context.Context, id int64) (Access, error)
	ListAccesses(ctx context.Context) ([]Access, error)
	DeleteAccess(ctx context.Context, id int64) error
	AddResourceToAccess(ctx context.Context, accessID, resourceID int64) error
	RemoveResourceFromAccess(ctx context.Context, accessID, resourceID int64) error
	AccessResources(ctx context.Context, accessID int64) ([]Resource, error)
	AccessHasGroups(ctx context.Context, accessID int64) (bool, error)

	// Groups
	CreateGroup(ctx context.Context, g Group) (Group, error)
	GetGroup(ctx context.Context, id int64) (Group, error)
	ListGroups(ctx context.Context) ([]Group, error)
	DeleteGroup(ctx context.Context, id int64) error
	AddAccessToGroup(ctx context.Context, groupID, accessID int64) error
	RemoveAccessFromGroup(ctx context.Context, groupID, accessID int64) error
	GroupAccesses(ctx context.Context, groupID int64) ([]Access, error)
	AccessGroups(ctx context.Context, accessID int64) ([]Group, error)
	GroupHasConflicts(ctx context.Context, groupID int64) (bool, error)

	// Conflicts
	ConflictExists(ctx context.Context, a, b int64) (bool, error)
	CreateConflictPair(ctx context.Context, a, b int64) error
	DeleteConflictPair(ctx context.Context, a, b int64) error
	ConflictMatrix(ctx context.Context) ([]Conflict, error)
}
