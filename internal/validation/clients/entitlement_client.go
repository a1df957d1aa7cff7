package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// ActiveGroup is the subset of UE's current_active_groups shape V needs.
type ActiveGroup struct {
	ID   int64   `json:"id"`
	Name *string `json:"name,omitempty"`
}

type currentActiveGroupsResponse struct {
	Groups []ActiveGroup `json:"groups"`
}

// EntitlementClient calls User-Entitlement's read endpoints over HTTP.
type EntitlementClient struct {
	baseURL string
	http    *http.Client
}

func NewEntitlementClient(baseURL string, httpClient *http.Client) *EntitlementClient {
	return &EntitlementClient{baseURL: baseURL, http: httpClient}
}

// CurrentActiveGroups calls GET /users/{id}/current_active_groups.
func (c *EntitlementClient) CurrentActiveGroups(ctx context.Context, userID int64) ([]ActiveGroup, error) {
	path := "/users/" + strconv.FormatInt(userID, 10) + "/current_active_groups"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("entitlement client: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("entitlement client: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("entitlement client: %s: unexpected status %d", path, resp.StatusCode)
	}
	var out currentActiveGroupsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("entitlement client: %s: decode response: %w", path, err)
	}
	return out.Groups, nil
}
