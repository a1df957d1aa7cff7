// Package clients holds V's outbound HTTP clients to Access-Catalog and
// User-Entitlement, each bounded by the shared httpclient timeout.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// Conflict is one directional edge of the catalog's conflict matrix.
type Conflict struct {
	GroupIDA int64 `json:"group_id_a"`
	GroupIDB int64 `json:"group_id_b"`
}

// Group is the subset of Access-Catalog's group shape V needs.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CatalogClient calls Access-Catalog's read endpoints over HTTP.
type CatalogClient struct {
	baseURL string
	http    *http.Client
}

func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	return &CatalogClient{baseURL: baseURL, http: httpClient}
}

// ConflictMatrix calls GET /conflicts.
func (c *CatalogClient) ConflictMatrix(ctx context.Context) ([]Conflict, error) {
	var out []Conflict
	if err := c.getJSON(ctx, "/conflicts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AccessGroups calls GET /accesses/{id}/groups.
func (c *CatalogClient) AccessGroups(ctx context.Context, accessID int64) ([]Group, error) {
	var out []Group
	path := "/accesses/" + strconv.FormatInt(accessID, 10) + "/groups"
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("catalog client: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog client: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("catalog client: %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog client: %s: decode response: %w", path, err)
	}
	return nil
}
