package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// StatusPath is the upstream liveness endpoint.
const StatusPath = "/wp-json/vip-learn/v1/status"

// Health is the outcome of one upstream status check.
type Health struct {
	Healthy    bool
	StatusCode int
	Body       string
	Err        error
}

// Message renders the check as a sentence for the status tool and the status log.
func (h Health) Message() string {
	switch {
	case h.Err != nil:
		return fmt.Sprintf("Error checking remote VIP Learn API: %v", h.Err)
	case h.Healthy:
		return "Remote VIP Learn API is healthy (200 OK, response: 'OK')."
	default:
		return fmt.Sprintf("Remote VIP Learn API returned status %d and response: %s", h.StatusCode, compactBody(h.Body))
	}
}

// CheckStatus calls the upstream status endpoint. It never returns an error:
// transport failures are reported through Health.Err.
func (r *Relay) CheckStatus(ctx context.Context) Health {
	resp, err := r.get(ctx, StatusPath, nil)
	if err != nil {
		return Health{Err: err}
	}

	body := strings.TrimSpace(string(resp.Body))
	return Health{
		Healthy:    resp.StatusCode == http.StatusOK && statusBodyOK(body),
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}

// statusBodyOK accepts the literal OK, or a JSON string "OK" as WordPress
// serialises a plain string return value.
func statusBodyOK(body string) bool {
	if body == "OK" {
		return true
	}
	var s string
	if json.Unmarshal([]byte(body), &s) == nil {
		return strings.TrimSpace(s) == "OK"
	}
	return false
}
