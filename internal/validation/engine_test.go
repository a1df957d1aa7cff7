//go:build unit

package validation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accessentitlement/platform/internal/broker"
	"github.com/accessentitlement/platform/internal/validation/cache"
	"github.com/accessentitlement/platform/internal/validation/clients"
)

type fakeBackends struct {
	activeGroups map[int64][]clients.ActiveGroup
	accessGroups map[int64][]clients.Group
	conflicts    []clients.Conflict
	catalogCalls int
	entitleCalls int
}

func newFakeBackends() *fakeBackends {
	return &fakeBackends{
		activeGroups: map[int64][]clients.ActiveGroup{},
		accessGroups: map[int64][]clients.Group{},
	}
}

func (f *fakeBackends) catalogServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.catalogCalls++
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/conflicts":
			_ = json.NewEncoder(w).Encode(f.conflicts)
		default:
			// /accesses/{id}/groups
			var id int64
			_, _ = fscan(r.URL.Path, &id)
			_ = json.NewEncoder(w).Encode(f.accessGroups[id])
		}
	}))
}

func (f *fakeBackends) entitlementServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.entitleCalls++
		var id int64
		_, _ = fscan(r.URL.Path, &id)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"groups": f.activeGroups[id]})
	}))
}

// fscan extracts the numeric /segment/ out of a path like
// /accesses/42/groups or /users/100/current_active_groups.
func fscan(path string, out *int64) (int, error) {
	start := -1
	for i, r := range path {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
		} else if start != -1 {
			break
		}
	}
	if start == -1 {
		return 0, nil
	}
	end := start
	for end < len(path) && path[end] >= '0' && path[end] <= '9' {
		end++
	}
	var v int64
	for _, r := range path[start:end] {
		v = v*10 + int64(r-'0')
	}
	*out = v
	return 1, nil
}

func newTestEngine(t *testing.T, backends *fakeBackends) *Engine {
	t.Helper()
	catalogSrv := backends.catalogServer()
	t.Cleanup(catalogSrv.Close)
	entitleSrv := backends.entitlementServer()
	t.Cleanup(entitleSrv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	catalogClient := clients.NewCatalogClient(catalogSrv.URL, catalogSrv.Client())
	entitleClient := clients.NewEntitlementClient(entitleSrv.URL, entitleSrv.Client())
	mirror := cache.New(rdb)
	return NewEngine(catalogClient, entitleClient, mirror, TTLs{
		ConflictsMatrix: time.Minute,
		AccessGroups:    time.Minute,
		ActiveGroups:    time.Minute,
	})
}

func TestEvaluateApprovesWhenNoConflict(t *testing.T) {
	backends := newFakeBackends()
	backends.activeGroups[100] = []clients.ActiveGroup{{ID: 2}}
	engine := newTestEngine(t, backends)

	result := engine.Evaluate(context.Background(), broker.ValidationJob{
		RequestID: "r1", UserID: 100, Kind: broker.KindGroup, ItemID: 1,
	})
	assert.True(t, result.Approved)
	assert.Empty(t, result.Reason)
}

func TestEvaluateRejectsOnConflictGroupRequest(t *testing.T) {
	backends := newFakeBackends()
	backends.activeGroups[100] = []clients.ActiveGroup{{ID: 1}}
	backends.conflicts = []clients.Conflict{{GroupIDA: 1, GroupIDB: 2}, {GroupIDA: 2, GroupIDB: 1}}
	engine := newTestEngine(t, backends)

	result := engine.Evaluate(context.Background(), broker.ValidationJob{
		RequestID: "r2", UserID: 100, Kind: broker.KindGroup, ItemID: 2,
	})
	require.False(t, result.Approved)
	assert.Contains(t, result.Reason, "group 1")
	assert.Contains(t, result.Reason, "group 2")
}

func TestEvaluateEmptyHeldGroupsApproves(t *testing.T) {
	backends := newFakeBackends()
	backends.conflicts = []clients.Conflict{{GroupIDA: 1, GroupIDB: 2}}
	engine := newTestEngine(t, backends)

	result := engine.Evaluate(context.Background(), broker.ValidationJob{
		RequestID: "r3", UserID: 999, Kind: broker.KindGroup, ItemID: 2,
	})
	assert.True(t, result.Approved)
}

func TestEvaluateAccessWithNoGroupsIsRejectedAsIntegrityIssue(t *testing.T) {
	backends := newFakeBackends()
	backends.activeGroups[100] = []clients.ActiveGroup{{ID: 1}}
	engine := newTestEngine(t, backends)

	result := engine.Evaluate(context.Background(), broker.ValidationJob{
		RequestID: "r4", UserID: 100, Kind: broker.KindAccess, ItemID: 77,
	})
	require.False(t, result.Approved)
	assert.Contains(t, result.Reason, "no groups found for access 77")
}

func TestEvaluateAccessResolvesGroupsThroughCatalog(t *testing.T) {
	backends := newFakeBackends()
	backends.activeGroups[100] = []clients.ActiveGroup{{ID: 5}}
	backends.accessGroups[77] = []clients.Group{{ID: 6, Name: "Finance"}}
	backends.conflicts = []clients.Conflict{{GroupIDA: 5, GroupIDB: 6}}
	engine := newTestEngine(t, backends)

	result := engine.Evaluate(context.Background(), broker.ValidationJob{
		RequestID: "r5", UserID: 100, Kind: broker.KindAccess, ItemID: 77,
	})
	require.False(t, result.Approved)
	assert.Contains(t, result.Reason, "group 5")
}

func TestEvaluateMirrorsConflictMatrixAcrossCalls(t *testing.T) {
	backends := newFakeBackends()
	backends.activeGroups[100] = []clients.ActiveGroup{{ID: 1}}
	backends.conflicts = []clients.Conflict{{GroupIDA: 1, GroupIDB: 2}}
	engine := newTestEngine(t, backends)

	_ = engine.Evaluate(context.Background(), broker.ValidationJob{RequestID: "a", UserID: 100, Kind: broker.KindGroup, ItemID: 9})
	_ = engine.Evaluate(context.Background(), broker.ValidationJob{RequestID: "b", UserID: 100, Kind: broker.KindGroup, ItemID: 9})

	assert.Equal(t, 1, backends.catalogCalls)
}

// approve(U,T,C) must equal (U x T) ∩ C = ∅ for every combination of held
// and target sets over a small universe of groups.
func TestCheckConflictsMatchesSetProduct(t *testing.T) {
	conflicts := []clients.Conflict{
		{GroupIDA: 1, GroupIDB: 2}, {GroupIDA: 2, GroupIDB: 1},
		{GroupIDA: 3, GroupIDB: 4}, {GroupIDA: 4, GroupIDB: 3},
	}
	edges := map[[2]int64]bool{}
	for _, c := range conflicts {
		edges[[2]int64{c.GroupIDA, c.GroupIDB}] = true
	}

	universe := []int64{1, 2, 3, 4, 5}
	for heldMask := 0; heldMask < 1<<len(universe); heldMask++ {
		for targetMask := 0; targetMask < 1<<len(universe); targetMask++ {
			held := map[int64]struct{}{}
			target := map[int64]struct{}{}
			for i, g := range universe {
				if heldMask&(1<<i) != 0 {
					held[g] = struct{}{}
				}
				if targetMask&(1<<i) != 0 {
					target[g] = struct{}{}
				}
			}

			wantApproved := true
			for u := range held {
				for v := range target {
					if edges[[2]int64{u, v}] {
						wantApproved = false
					}
				}
			}

			approved, reason := checkConflicts(held, target, conflicts)
			require.Equal(t, wantApproved, approved, "held=%v target=%v", held, target)
			if approved {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		}
	}
}
