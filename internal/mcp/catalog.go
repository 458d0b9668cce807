package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
)

// ToolDescriptor maps one MCP tool onto one upstream GET endpoint with a single query parameter.
type ToolDescriptor struct {
	Name             string
	Description      string
	ParamName        string
	ParamDescription string
	Endpoint         string // upstream path below the site URL
	ParamKey         string // upstream query parameter name
}

// APITools is the table of proxied endpoints. Adding an endpoint only needs a new entry.
var APITools = []ToolDescriptor{
	{
		Name:             "vip-learn-lesson-search",
		Description:      "Search for lessons by a query string.",
		ParamName:        "query",
		ParamDescription: "Search term for lessons",
		Endpoint:         "/wp-json/vip-learn/v1/lesson-search",
		ParamKey:         "s",
	},
	{
		Name:             "vip-learn-lesson-details",
		Description:      "Fetch lesson details by lesson slug.",
		ParamName:        "query",
		ParamDescription: "Lesson details by slug",
		Endpoint:         "/wp-json/vip-learn/v1/lesson-details",
		ParamKey:         "slug",
	},
}

// HandlerOptions tune how handlers report upstream failures.
type HandlerOptions struct {
	// FlagErrors sets isError on results carrying an upstream failure.
	FlagErrors bool
}

// ValidateDescriptor validates a single descriptor.
func ValidateDescriptor(d ToolDescriptor) error {
	if d.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if d.ParamName == "" {
		return fmt.Errorf("tool %q has empty param name", d.Name)
	}
	if d.ParamKey == "" {
		return fmt.Errorf("tool %q has empty param key", d.Name)
	}
	if !strings.HasPrefix(d.Endpoint, "/") {
		return fmt.Errorf("tool %q has invalid endpoint %q (must start with /)", d.Name, d.Endpoint)
	}
	if strings.Contains(d.Endpoint, "..") || strings.ContainsAny(d.Endpoint, "?#") {
		return fmt.Errorf("tool %q has invalid endpoint %q", d.Name, d.Endpoint)
	}
	return nil
}

// ValidateDescriptors checks every descriptor and rejects duplicate names,
// including a clash with the status tool.
func ValidateDescriptors(descriptors []ToolDescriptor) error {
	seen := map[string]bool{StatusToolName: true}
	for _, d := range descriptors {
		if err := ValidateDescriptor(d); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate tool name %q", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// BuildMCPTool converts a descriptor into an mcp.Tool with one required, non-empty string parameter.
func BuildMCPTool(d ToolDescriptor) mcp.Tool {
	return mcp.NewTool(d.Name,
		mcp.WithDescription(d.Description),
		mcp.WithString(d.ParamName,
			mcp.Required(),
			mcp.MinLength(1),
			mcp.Description(d.ParamDescription),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

// GenericToolHandler creates a handler that forwards the descriptor's parameter to its upstream endpoint.
func GenericToolHandler(relay *Relay, d ToolDescriptor, opts HandlerOptions, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		value, err := r.RequireString(d.ParamName)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %s parameter is required", d.ParamName)), nil
		}
		if value == "" {
			return errorResult(fmt.Sprintf("Error: %s must be a non-empty string", d.ParamName)), nil
		}

		ctx, log := withCallLogger(ctx, logger)
		start := time.Now()
		log.Info().Str("tool", d.Name).Str(d.ParamName, value).Msg("tool call")

		text, err := relay.Fetch(ctx, d.Endpoint, d.ParamKey, value)
		if err != nil {
			log.Warn().Str("tool", d.Name).Int64("duration_ms", time.Since(start).Milliseconds()).Str("error", err.Error()).Msg("tool call failed")
			return upstreamErrorResult(err, opts), nil
		}

		log.Info().Str("tool", d.Name).Int64("duration_ms", time.Since(start).Milliseconds()).Msg("tool call complete")
		return textResult(text), nil
	}
}

// withCallLogger tags ctx and the returned logger with a fresh correlation ID.
func withCallLogger(ctx context.Context, logger *common.Logger) (context.Context, *common.Logger) {
	id := common.NewCorrelationID()
	return common.WithCorrelationID(ctx, id), logger.WithCorrelationId(id)
}
