package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
)

// StatusToolName is the name of the liveness tool.
const StatusToolName = "vip-learn-mcp-status"

const localStatus = "I am working."

// StatusOptions configure the status tool.
type StatusOptions struct {
	// RemoteCheck calls the upstream status endpoint on every call.
	RemoteCheck bool
	Log         *StatusLog
}

// StatusResult is the structured content attached when the remote check runs.
type StatusResult struct {
	Healthy      bool   `json:"healthy"`
	RemoteStatus string `json:"remote_status"`
}

// StatusTool returns the mcp.Tool definition for the status tool.
func StatusTool(remoteCheck bool) mcp.Tool {
	description := "Get the status of the VIP Learn MCP server"
	if remoteCheck {
		description = "Get the status of the VIP Learn MCP server and check the remote VIP Learn API status."
	}
	return mcp.NewTool(StatusToolName,
		mcp.WithDescription(description),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// StatusToolHandler reports local liveness and, when enabled, upstream health.
// Upstream failures are reported as unhealthy, never as errors.
func StatusToolHandler(relay *Relay, opts StatusOptions, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, log := withCallLogger(ctx, logger)

		if !opts.RemoteCheck {
			appendStatusLog(opts.Log, localStatus, log)
			return textResult(localStatus), nil
		}

		start := time.Now()
		health := relay.CheckStatus(ctx)
		message := health.Message()

		log.Info().
			Str("tool", StatusToolName).
			Bool("healthy", health.Healthy).
			Int("status", health.StatusCode).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("status check")
		appendStatusLog(opts.Log, message, log)

		result := textResult(localStatus + "\n" + message)
		result.StructuredContent = StatusResult{
			Healthy:      health.Healthy,
			RemoteStatus: message,
		}
		return result, nil
	}
}

func appendStatusLog(l *StatusLog, message string, logger *common.Logger) {
	if err := l.Append(message); err != nil {
		logger.Warn().Str("path", l.Path()).Str("error", err.Error()).Msg("failed to append status log")
	}
}
