package catalog

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/accessentitlement/platform/internal/pkg/errors"
)

// TTLs bundles the three cache-key TTLs AC owns.
type TTLs struct {
	ConflictsMatrix time.Duration
	GroupAccesses   time.Duration
	AccessGroups    time.Duration
}

// Service enforces the catalog's integrity invariants and cache-invalidation
// discipline on top of Repository + Cache.
type Service struct {
	repo  Repository
	cache Cache
	ttl   TTLs
}

func NewService(repo Repository, cache Cache, ttl TTLs) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl}
}

// --- Queries ---

func (s *Service) GetResource(ctx context.Context, id int64) (Resource, error) {
	r, err := s.repo.GetResource(ctx, id)
	if err != nil {
		return Resource{}, notFoundOrErr(err, "resource", id)
	}
	return r, nil
}

func (s *Service) ListResources(ctx context.Context) ([]Resource, error) {
	return s.repo.ListResources(ctx)
}

func (s *Service) GetAccess(ctx context.Context, id int64) (Access, error) {
	a, err := s.repo.GetAccess(ctx, id)
	if err != nil {
		return Access{}, notFoundOrErr(err, "access", id)
	}
	return a, nil
}

func (s *Service) ListAccesses(ctx context.Context) ([]Access, error) {
	return s.repo.ListAccesses(ctx)
}

func (s *Service) GetGroup(ctx context.Context, id int64) (Group, error) {
	g, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return Group{}, notFoundOrErr(err, "group", id)
	}
	return g, nil
}

func (s *Service) ListGroups(ctx context.Context) ([]Group, error) {
	return s.repo.ListGroups(ctx)
}

// GetGroupAccesses implements get_group_accesses: read-through cache of
// group:{id}:accesses, fails not-found if the group is unknown.
func (s *Service) GetGroupAccesses(ctx context.Context, groupID int64) ([]AccessWithResources, error) {
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return nil, apperrors.NotFound("group_not_found", fmt.Sprintf("group %d not found", groupID))
	}

	return readThrough(ctx, s.cache, keyGroupAccesses(groupID), s.ttl.GroupAccesses, func(ctx context.Context) ([]AccessWithResources, error) {
		accesses, err := s.repo.GroupAccesses(ctx, groupID)
		if err != nil {
			return nil, err
		}
		out := make([]AccessWithResources, 0, len(accesses))
		for _, a := range accesses {
			resources, err := s.repo.AccessResources(ctx, a.ID)
			if err != nil {
				return nil, err
			}
			out = append(out, AccessWithResources{Access: a, Resources: resources})
		}
		return out, nil
	})
}

// GetAccessGroups implements get_access_groups: read-through cache of
// access:{id}:groups, fails not-found if the access is unknown.
func (s *Service) GetAccessGroups(ctx context.Context, accessID int64) ([]Group, error) {
	if _, err := s.repo.GetAccess(ctx, accessID); err != nil {
		return nil, apperrors.NotFound("access_not_found", fmt.Sprintf("access %d not found", accessID))
	}

	return readThrough(ctx, s.cache, keyAccessGroups(accessID), s.ttl.AccessGroups, func(ctx context.Context) ([]Group, error) {
		return s.repo.AccessGroups(ctx, accessID)
	})
}

// GetConflictMatrix implements get_conflict_matrix: read-through cache of
// conflicts:matrix, both directions included.
func (s *Service) GetConflictMatrix(ctx context.Context) ([]Conflict, error) {
	return readThrough(ctx, s.cache, keyConflictsMatrix, s.ttl.ConflictsMatrix, func(ctx context.Context) ([]Conflict, error) {
		return s.repo.ConflictMatrix(ctx)
	})
}

// --- Administrative writes ---

func (s *Service) CreateResource(ctx context.Context, name string, rtype ResourceType, description *string) (Resource, error) {
	if name == "" || len(name) > 100 {
		return Resource{}, apperrors.BadRequest("invalid_name", "resource name must be non-empty and <= 100 chars")
	}
	if !rtype.Valid() {
		return Resource{}, apperrors.BadRequest("invalid_type", "resource type must be API, Database, or Service")
	}
	return s.repo.CreateResource(ctx, Resource{Name: name, Type: rtype, Description: description})
}

// DeleteResource refuses to delete a resource that any access still
// references.
func (s *Service) DeleteResource(ctx context.Context, id int64) error {
	if _, err := s.repo.GetResource(ctx, id); err != nil {
		return apperrors.NotFound("resource_not_found", fmt.Sprintf("resource %d not found", id))
	}
	hasAccesses, err := s.repo.ResourceHasAccesses(ctx, id)
	if err != nil {
		return err
	}
	if hasAccesses {
		return apperrors.Conflict("resource_in_use", "resource has referencing accesses")
	}
	return s.repo.DeleteResource(ctx, id)
}

func (s *Service) CreateAccess(ctx context.Context, name string) (Access, error) {
	if name == "" || len(name) > 100 {
		return Access{}, apperrors.BadRequest("invalid_name", "access name must be non-empty and <= 100 chars")
	}
	return s.repo.CreateAccess(ctx, Access{Name: name})
}

// DeleteAccess refuses to delete an access that any group still
// references, and invalidates access:{id}:groups on success.
func (s *Service) DeleteAccess(ctx context.Context, id int64) error {
	if _, err := s.repo.GetAccess(ctx, id); err != nil {
		return apperrors.NotFound("access_not_found", fmt.Sprintf("access %d not found", id))
	}
	hasGroups, err := s.repo.AccessHasGroups(ctx, id)
	if err != nil {
		return err
	}
	if hasGroups {
		return apperrors.Conflict("access_in_use", "access has referencing groups")
	}
	if err := s.repo.DeleteAccess(ctx, id); err != nil {
		return err
	}
	return s.cache.Delete(ctx, keyAccessGroups(id))
}

// AddResourceToAccess invalidates access:{id}:groups: a resource change
// changes what the access's groups resolve to downstream.
func (s *Service) AddResourceToAccess(ctx context.Context, accessID, resourceID int64) error {
	if _, err := s.repo.GetAccess(ctx, accessID); err != nil {
		return apperrors.NotFound("access_not_found", fmt.Sprintf("access %d not found", accessID))
	}
	if _, err := s.repo.GetResource(ctx, resourceID); err != nil {
		return apperrors.NotFound("resource_not_found", fmt.Sprintf("resource %d not found", resourceID))
	}
	if err := s.repo.AddResourceToAccess(ctx, accessID, resourceID); err != nil {
		return err
	}
	return s.cache.Delete(ctx, keyAccessGroups(accessID))
}

func (s *Service) RemoveResourceFromAccess(ctx context.Context, accessID, resourceID int64) error {
	if err := s.repo.RemoveResourceFromAccess(ctx, accessID, resourceID); err != nil {
		return err
	}
	return s.cache.Delete(ctx, keyAccessGroups(accessID))
}

func (s *Service) CreateGroup(ctx context.Context, name string) (Group, error) {
	if name == "" || len(name) > 100 {
		return Group{}, apperrors.BadRequest("invalid_name", "group name must be non-empty and <= 100 chars")
	}
	g, err := s.repo.CreateGroup(ctx, Group{Name: name})
	if err != nil {
		return Group{}, apperrors.Conflict("duplicate_name", "group name must be unique").WithCause(err)
	}
	return g, nil
}

// DeleteGroup refuses to delete a group that still has conflict edges.
func (s *Service) DeleteGroup(ctx context.Context, id int64) error {
	if _, err := s.repo.GetGroup(ctx, id); err != nil {
		return apperrors.NotFound("group_not_found", fmt.Sprintf("group %d not found", id))
	}
	hasConflicts, err := s.repo.GroupHasConflicts(ctx, id)
	if err != nil {
		return err
	}
	if hasConflicts {
		return apperrors.Conflict("group_has_conflicts", "group has conflict edges")
	}
	return s.repo.DeleteGroup(ctx, id)
}

// AddAccessToGroup invalidates both group:{group}:accesses and
// access:{access}:groups.
func (s *Service) AddAccessToGroup(ctx context.Context, groupID, accessID int64) error {
	if _, err := s.repo.GetGroup(ctx, groupID); err != nil {
		return apperrors.NotFound("group_not_found", fmt.Sprintf("group %d not found", groupID))
	}
	if _, err := s.repo.GetAccess(ctx, accessID); err != nil {
		return apperrors.NotFound("access_not_found", fmt.Sprintf("access %d not found", accessID))
	}
	if err := s.repo.AddAccessToGroup(ctx, groupID, accessID); err != nil {
		return err
	}
	return s.cache.Delete(ctx, keyGroupAccesses(groupID), keyAccessGroups(accessID))
}

// RemoveAccessFromGroup invalidates the same keys as AddAccessToGroup.
func (s *Service) RemoveAccessFromGroup(ctx context.Context, groupID, accessID int64) error {
	if err := s.repo.RemoveAccessFromGroup(ctx, groupID, accessID); err != nil {
		return err
	}
	return s.cache.Delete(ctx, keyGroupAccesses(groupID), keyAccessGroups(accessID))
}

// CreateConflict rejects a=b and unknown groups, inserts both directional
// rows atomically, and invalidates conflicts:matrix.
func (s *Service) CreateConflict(ctx context.Context, a, b int64) error {
	if a == b {
		return apperrors.BadRequest("self_conflict", "a group cannot conflict with itself")
	}
	if _, err := s.repo.GetGroup(ctx, a); err != nil {
		return apperrors.NotFound("group_not_found", fmt.Sprintf("group %d not found", a))
	}
	if _, err := s.repo.GetGroup(ctx, b); err != nil {
		return apperrors.NotFound("group_not_found", fmt.Sprintf("group %d not found", b))
	}
	if err := s.repo.CreateConflictPair(ctx, a, b); err != nil {
		return err
	}
	return s.cache.Delete(ctx, keyConflictsMatrix)
}

// DeleteConflict deletes both directions atomically; it fails not-found
// only if neither row existed.
func (s *Service) DeleteConflict(ctx context.Context, a, b int64) error {
	existsForward, err := s.repo.ConflictExists(ctx, a, b)
	if err != nil {
		return err
	}
	existsBackward, err := s.repo.ConflictExists(ctx, b, a)
	if err != nil {
		return err
	}
	if !existsForward && !existsBackward {
		return apperrors.NotFound("conflict_not_found", "no conflict edge between those groups")
	}
	if err := s.repo.DeleteConflictPair(ctx, a, b); err != nil {
		return err
	}
	return s.cache.Delete(ctx, keyConflictsMatrix)
}

func notFoundOrErr(err error, kind string, id int64) error {
	return apperrors.NotFound(kind+"_not_found", fmt.Sprintf("%s %d not found", kind, id)).WithCause(err)
}
