// Package catalog implements the Access-Catalog service: resources,
// accesses, groups, and the conflict matrix.
package catalog

// ResourceType enumerates the three resource kinds the catalog allows.
type ResourceType string

const (
	ResourceTypeAPI      ResourceType = "API"
	ResourceTypeDatabase ResourceType = "Database"
	ResourceTypeService  ResourceType = "Service"
)

func (t ResourceType) Valid() bool {
	switch t {
	case ResourceTypeAPI, ResourceTypeDatabase, ResourceTypeService:
		return true
	default:
		return false
	}
}

// Resource is an individually protected API/Database/Service.
type Resource struct {
	ID          int64        `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Type        ResourceType `json:"type" db:"type"`
	Description *string      `json:"description,omitempty" db:"description"`
}

// Access is a named bundle of resources.
type Access struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// AccessWithResources is the shape get_group_accesses returns:
// an access together with the resources it bundles.
type AccessWithResources struct {
	Access
	Resources []Resource `json:"resources"`
}

// Group is a named permission group; groups participate in conflicts and
// grant the accesses attached to them.
type Group struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Conflict is one directional row of a symmetric conflict-of-interest edge:
// if (a,b) exists then (b,a) exists too.
type Conflict struct {
	GroupIDA int64 `json:"group_id_a" db:"group_id_a"`
	GroupIDB int64 `json:"group_id_b" db:"group_id_b"`
}
