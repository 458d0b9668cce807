package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
	"github.com/bobmcallan/vip-learn-mcp/internal/config"
	"github.com/bobmcallan/vip-learn-mcp/internal/mcp"
)

const shutdownTimeout = 10 * time.Second

// App holds all application components and dependencies.
type App struct {
	Config    *config.Config
	Logger    *common.Logger
	Server    *mcpserver.MCPServer
	Relay     *mcp.Relay
	StatusLog *mcp.StatusLog
	ToolCount int
}

// New builds the MCP server and registers the status tool and every API tool.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Relay:     mcp.NewRelay(cfg, logger),
		StatusLog: mcp.NewStatusLog(cfg.Status.LogFile),
	}

	a.Server = mcpserver.NewMCPServer(
		cfg.Server.Name,
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	count, err := mcp.RegisterTools(a.Server, a.Relay, mcp.APITools,
		mcp.StatusOptions{RemoteCheck: cfg.Status.RemoteCheck, Log: a.StatusLog},
		mcp.HandlerOptions{FlagErrors: cfg.Upstream.FlagErrors},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	a.ToolCount = count

	logger.Info().
		Int("tools", count).
		Str("site_url", cfg.Site.SiteURL).
		Bool("remote_status_check", cfg.Status.RemoteCheck).
		Str("status_log", a.StatusLog.Path()).
		Msg("MCP server initialized")

	return a, nil
}

// ServeStdio serves MCP over in/out until in reaches EOF or ctx is cancelled.
// Cancellation is a normal shutdown and returns nil.
func (a *App) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := mcpserver.NewStdioServer(a.Server)

	a.Logger.Info().Str("transport", "stdio").Msg("VIP Learn MCP server running on stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	a.Logger.Info().Msg("stdio server stopped")
	return nil
}

// ServeHTTP serves MCP over streamable HTTP on addr until ctx is cancelled,
// then shuts the listener down gracefully.
func (a *App) ServeHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           mcp.NewHandler(a.Server, a.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info().Str("transport", "http").Str("addr", addr).Msg("VIP Learn MCP server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error().Str("error", err.Error()).Msg("graceful shutdown failed")
			return srv.Close()
		}
		a.Logger.Info().Msg("http server stopped")
		return nil
	})
	return g.Wait()
}
