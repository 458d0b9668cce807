package mcp

import (
	"encoding/json"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
)

// Handler serves the MCP server over streamable HTTP at /mcp, with a local
// liveness check at /health.
type Handler struct {
	mux    *http.ServeMux
	logger *common.Logger
}

// NewHandler wraps s in a stateless streamable HTTP transport.
func NewHandler(s *mcpserver.MCPServer, logger *common.Logger) *Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s,
		mcpserver.WithStateLess(true),
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamable)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return &Handler{mux: mux, logger: logger}
}

// ServeHTTP delegates to the MCP and health routes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("http request")
	h.mux.ServeHTTP(w, r)
}
