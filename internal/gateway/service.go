package gateway

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Service aggregates Access-Catalog and User-Entitlement for client
// callers. It holds no state of its own: every method either proxies a
// single downstream call or fans out a handful of them in parallel and
// merges the results.
type Service struct {
	catalog     *downstreamClient
	entitlement *downstreamClient
}

func NewService(catalog, entitlement *downstreamClient) *Service {
	return &Service{catalog: catalog, entitlement: entitlement}
}

// --- Catalog passthrough ---

func (s *Service) ListResources(ctx context.Context) ([]resource, error) {
	var out []resource
	err := s.catalog.do(ctx, "GET", "/resources", nil, &out)
	return out, err
}

func (s *Service) GetResource(ctx context.Context, id int64) (resource, error) {
	var out resource
	err := s.catalog.do(ctx, "GET", "/resources/"+itoa(id), nil, &out)
	return out, err
}

func (s *Service) ListAccesses(ctx context.Context) ([]access, error) {
	var out []access
	err := s.catalog.do(ctx, "GET", "/accesses", nil, &out)
	return out, err
}

func (s *Service) GetAccess(ctx context.Context, id int64) (access, error) {
	var out access
	err := s.catalog.do(ctx, "GET", "/accesses/"+itoa(id), nil, &out)
	return out, err
}

func (s *Service) GetAccessGroups(ctx context.Context, id int64) ([]group, error) {
	var out []group
	err := s.catalog.do(ctx, "GET", "/accesses/"+itoa(id)+"/groups", nil, &out)
	return out, err
}

func (s *Service) ListGroups(ctx context.Context) ([]group, error) {
	var out []group
	err := s.catalog.do(ctx, "GET", "/groups", nil, &out)
	return out, err
}

func (s *Service) GetGroup(ctx context.Context, id int64) (group, error) {
	var out group
	err := s.catalog.do(ctx, "GET", "/groups/"+itoa(id), nil, &out)
	return out, err
}

func (s *Service) GetGroupAccesses(ctx context.Context, id int64) ([]accessWithResources, error) {
	var out []accessWithResources
	err := s.catalog.do(ctx, "GET", "/groups/"+itoa(id)+"/accesses", nil, &out)
	return out, err
}

func (s *Service) GetConflictMatrix(ctx context.Context) ([]conflict, error) {
	var out []conflict
	err := s.catalog.do(ctx, "GET", "/conflicts", nil, &out)
	return out, err
}

// --- Entitlement passthrough ---

func (s *Service) CreateRequest(ctx context.Context, req createRequestBody) (createRequestResponse, error) {
	var out createRequestResponse
	err := s.entitlement.do(ctx, "POST", "/request", req, &out)
	return out, err
}

func (s *Service) RevokePermission(ctx context.Context, userID int64, req revokeRequestBody) (revokeResponse, error) {
	var out revokeResponse
	err := s.entitlement.do(ctx, "DELETE", "/users/"+itoa(userID)+"/permissions", req, &out)
	return out, err
}

func (s *Service) GetCurrentActiveGroups(ctx context.Context, userID int64) ([]activeGroupRef, error) {
	var out struct {
		Groups []activeGroupRef `json:"groups"`
	}
	err := s.entitlement.do(ctx, "GET", "/users/"+itoa(userID)+"/current_active_groups", nil, &out)
	return out.Groups, err
}

// --- Aggregation ---

// GetPermissions fetches UE's partitioned view and fills in any missing
// item_name by fanning out to AC in parallel, one lookup per distinct
// group/access id still missing a name. Enrichment failures are tolerated:
// a name that can't be resolved is simply left blank rather than failing
// the whole aggregate (the BFF's original permissions route did the same
// best-effort enrichment over group/access lookups).
func (s *Service) GetPermissions(ctx context.Context, userID int64) (permissions, error) {
	var out permissions
	if err := s.entitlement.do(ctx, "GET", "/users/"+itoa(userID)+"/permissions", nil, &out); err != nil {
		return permissions{}, err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range out.Groups {
		i := i
		if out.Groups[i].ItemName != nil {
			continue
		}
		g.Go(func() error {
			grp, err := s.GetGroup(ctx, out.Groups[i].ItemID)
			if err == nil {
				out.Groups[i].ItemName = &grp.Name
			}
			return nil
		})
	}
	for i := range out.Accesses {
		i := i
		if out.Accesses[i].ItemName != nil {
			continue
		}
		g.Go(func() error {
			acc, err := s.GetAccess(ctx, out.Accesses[i].ItemID)
			if err == nil {
				out.Accesses[i].ItemName = &acc.Name
			}
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
