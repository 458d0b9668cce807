package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
)

// RegisterTools registers the status tool followed by every descriptor and
// returns the number of tools added. Descriptors are validated first so a bad
// table registers nothing.
func RegisterTools(s *server.MCPServer, relay *Relay, descriptors []ToolDescriptor, status StatusOptions, opts HandlerOptions, logger *common.Logger) (int, error) {
	if err := ValidateDescriptors(descriptors); err != nil {
		return 0, err
	}

	s.AddTool(StatusTool(status.RemoteCheck), StatusToolHandler(relay, status, logger))
	for _, d := range descriptors {
		RegisterAPITool(s, relay, d, opts, logger)
	}
	return len(descriptors) + 1, nil
}

// RegisterAPITool registers one descriptor-driven tool.
func RegisterAPITool(s *server.MCPServer, relay *Relay, d ToolDescriptor, opts HandlerOptions, logger *common.Logger) {
	s.AddTool(BuildMCPTool(d), GenericToolHandler(relay, d, opts, logger))
}
