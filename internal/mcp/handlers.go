package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// upstreamErrorResult wraps a relay failure as text. Callers detect failure from
// the "Error:" text; isError is only set when opts.FlagErrors is on.
func upstreamErrorResult(err error, opts HandlerOptions) *mcp.CallToolResult {
	result := textResult(fmt.Sprintf("Error: %v", err))
	result.IsError = opts.FlagErrors
	return result
}
