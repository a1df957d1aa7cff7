//go:build unit

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/accessentitlement/platform/internal/pkg/errors"
)

func newTestService(t *testing.T, catalogMux, entitlementMux http.Handler) *Service {
	t.Helper()
	catalogSrv := httptest.NewServer(catalogMux)
	t.Cleanup(catalogSrv.Close)
	entitlementSrv := httptest.NewServer(entitlementMux)
	t.Cleanup(entitlementSrv.Close)

	catalog := NewDownstreamClient(catalogSrv.URL, catalogSrv.Client())
	entitlement := NewDownstreamClient(entitlementSrv.URL, entitlementSrv.Client())
	return NewService(catalog, entitlement)
}

func TestGetPermissionsEnrichesMissingNames(t *testing.T) {
	catalogMux := http.NewServeMux()
	catalogMux.HandleFunc("/groups/1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(group{ID: 1, Name: "Dev"})
	})
	catalogMux.HandleFunc("/accesses/7", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(access{ID: 7, Name: "Billing API"})
	})

	entitlementMux := http.NewServeMux()
	entitlementMux.HandleFunc("/users/100/permissions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(permissions{
			UserID: 100,
			Groups: []userEntitlement{
				{ID: 1, UserID: 100, Kind: "group", ItemID: 1, Status: "active", RequestID: "r1"},
			},
			Accesses: []userEntitlement{
				{ID: 2, UserID: 100, Kind: "access", ItemID: 7, Status: "active", RequestID: "r2"},
			},
		})
	})

	svc := newTestService(t, catalogMux, entitlementMux)
	out, err := svc.GetPermissions(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, out.Groups, 1)
	require.Len(t, out.Accesses, 1)
	require.NotNil(t, out.Groups[0].ItemName)
	assert.Equal(t, "Dev", *out.Groups[0].ItemName)
	require.NotNil(t, out.Accesses[0].ItemName)
	assert.Equal(t, "Billing API", *out.Accesses[0].ItemName)
}

func TestGetPermissionsToleratesEnrichmentFailure(t *testing.T) {
	catalogMux := http.NewServeMux()
	catalogMux.HandleFunc("/groups/1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	entitlementMux := http.NewServeMux()
	entitlementMux.HandleFunc("/users/100/permissions", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(permissions{
			UserID: 100,
			Groups: []userEntitlement{
				{ID: 1, UserID: 100, Kind: "group", ItemID: 1, Status: "active", RequestID: "r1"},
			},
		})
	})

	svc := newTestService(t, catalogMux, entitlementMux)
	out, err := svc.GetPermissions(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, out.Groups, 1)
	assert.Nil(t, out.Groups[0].ItemName)
}

func TestRevokePermissionPropagatesNotFound(t *testing.T) {
	catalogMux := http.NewServeMux()
	entitlementMux := http.NewServeMux()
	entitlementMux.HandleFunc("/users/100/permissions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 404, "reason": "entitlement_not_found", "message": "no active or pending entitlement for that item",
		})
	})

	svc := newTestService(t, catalogMux, entitlementMux)
	_, err := svc.RevokePermission(context.Background(), 100, revokeRequestBody{PermissionType: "group", ItemID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateRequestDownstreamUnavailable(t *testing.T) {
	catalogMux := http.NewServeMux()
	entitlementSrv := httptest.NewServer(http.NewServeMux())
	entitlementSrv.Close() // dead: any call fails at dial time

	catalogSrv := httptest.NewServer(catalogMux)
	defer catalogSrv.Close()

	catalog := NewDownstreamClient(catalogSrv.URL, catalogSrv.Client())
	entitlement := NewDownstreamClient(entitlementSrv.URL, entitlementSrv.Client())
	svc := NewService(catalog, entitlement)

	_, err := svc.CreateRequest(context.Background(), createRequestBody{UserID: 100, PermissionType: "group", ItemID: 1})
	require.Error(t, err)
	assert.True(t, apperrors.IsServiceUnavailable(err))
}
