// Package gateway implements the client-facing facade: aggregation of
// Access-Catalog and User-Entitlement responses, with no business logic or
// local persistence of its own.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/accessentitlement/platform/internal/pkg/errors"
)

// downstreamClient forwards requests to one of the two downstream services
// (AC or UE) and maps their responses/failures onto the gateway's own
// error taxonomy: a non-2xx body decodes as the downstream's Status
// envelope and is propagated with the same status; a network/timeout
// failure becomes Downstream-unavailable (503).
type downstreamClient struct {
	baseURL string
	http    *http.Client
}

// NewDownstreamClient builds a client bound to one downstream base URL,
// sharing the caller's *http.Client (already timeout-bounded by
// internal/pkg/httpclient).
func NewDownstreamClient(baseURL string, httpClient *http.Client) *downstreamClient {
	return &downstreamClient{baseURL: baseURL, http: httpClient}
}

// do issues method/path with an optional JSON body and decodes a 2xx
// response into out (nil skips decoding, used for 204s). A non-2xx
// response is turned into an *apperrors.ApplicationError carrying the
// downstream's status code and message, so the gateway's handler layer can
// pass it straight through via middleware.WriteError.
func (d *downstreamClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.InternalServer("encode_error", err.Error())
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return apperrors.InternalServer("build_request_error", err.Error())
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return apperrors.ServiceUnavailable("downstream_unavailable", fmt.Sprintf("%s %s: %v", method, path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.ServiceUnavailable("downstream_unavailable", fmt.Sprintf("%s %s: reading response: %v", method, path, err))
	}

	if resp.StatusCode >= 300 {
		return downstreamError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.BadGateway("downstream_decode_error", fmt.Sprintf("%s %s: %v", method, path, err))
	}
	return nil
}

// downstreamError maps a non-2xx downstream response to an
// ApplicationError carrying the same status code where meaningful, and
// 502 for anything that is not a recognizable client-facing status.
func downstreamError(status int, raw []byte) error {
	var envelope apperrors.Status
	message := http.StatusText(status)
	reason := "downstream_error"
	if len(raw) > 0 && json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
		message = envelope.Message
		if envelope.Reason != "" {
			reason = envelope.Reason
		}
	}
	if status < 400 || status >= 600 {
		status = http.StatusBadGateway
	}
	return apperrors.New(status, reason, message)
}
