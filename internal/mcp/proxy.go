package mcp

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
	"github.com/bobmcallan/vip-learn-mcp/internal/config"
)

// maxResponseSize caps the upstream response body to prevent OOM from unexpectedly large responses.
const maxResponseSize = 50 << 20 // 50MB

// Relay forwards tool calls to the VIP Learn REST API with basic authentication.
type Relay struct {
	siteURL    string
	username   string
	password   string
	userAgent  string
	httpClient *http.Client
	logger     *common.Logger
}

// upstreamResponse is a completed upstream exchange, whatever its status.
type upstreamResponse struct {
	StatusCode int
	Body       []byte
}

// StatusError is returned by Fetch when the upstream answers outside 2xx.
type StatusError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// NewRelay creates a relay for cfg.Site. TLS verification follows
// cfg.Upstream.InsecureSkipVerify and every request is bounded by the configured timeout.
func NewRelay(cfg *config.Config, logger *common.Logger) *Relay {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Upstream.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via upstream.insecure_skip_verify
		logger.Warn().Str("site_url", cfg.Site.SiteURL).Msg("upstream TLS certificate verification is disabled")
	}

	userAgent := cfg.Upstream.UserAgent
	if userAgent == "" {
		userAgent = cfg.Server.Name + "/" + common.GetVersion()
	}

	return &Relay{
		siteURL:   cfg.Site.SiteURL,
		username:  cfg.Site.Username,
		password:  cfg.Site.Password,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Upstream.GetTimeout(),
			Transport: transport,
		},
		logger: logger,
	}
}

// Fetch GETs path with a single query parameter and returns the JSON body
// re-indented with two spaces. An empty key sends no query string.
func (r *Relay) Fetch(ctx context.Context, path, key, value string) (string, error) {
	var query url.Values
	if key != "" {
		query = url.Values{key: []string{value}}
	}

	resp, err := r.get(ctx, path, query)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", parseErrorResponse(resp.StatusCode, resp.Body)
	}
	return prettyJSON(resp.Body)
}

// get performs a GET request to path on the site and returns the response regardless of status.
func (r *Relay) get(ctx context.Context, path string, query url.Values) (*upstreamResponse, error) {
	logger := r.logger.LoggerFor(ctx)

	target := r.siteURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	logger.Debug().Str("method", http.MethodGet).Str("path", path).Str("query", query.Encode()).Msg("upstream request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(r.username, r.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		logger.Error().Str("method", http.MethodGet).Str("path", path).Int64("duration_ms", duration.Milliseconds()).Str("error", err.Error()).Msg("upstream request failed")
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	logger.Debug().Int("status", resp.StatusCode).Int64("duration_ms", duration.Milliseconds()).Int("bytes", len(body)).Msg("upstream response")

	return &upstreamResponse{StatusCode: resp.StatusCode, Body: body}, nil
}

// parseErrorResponse extracts a meaningful error from a non-2xx response.
// WordPress REST errors carry {"code": ..., "message": ...}.
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	e := &StatusError{StatusCode: statusCode, Body: strings.TrimSpace(string(body))}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			e.Message = errResp.Message
		} else if errResp.Error != "" {
			e.Message = errResp.Error
		}
	}
	return e
}
