package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vip-learn-mcp/internal/app"
	"github.com/bobmcallan/vip-learn-mcp/internal/common"
	"github.com/bobmcallan/vip-learn-mcp/internal/config"
)

type rootOptions struct {
	configPath    string
	settingsPaths []string
	httpAddr      string
}

func newRootCmd() *cobra.Command {
	common.LoadVersionFromFile()
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vip-learn-mcp",
		Short: "MCP server exposing the VIP Learn lesson API",
		Long: `vip-learn-mcp serves Model Context Protocol tools that relay to the
VIP Learn WordPress REST API using basic auth.

Site credentials are read from config.json (siteUrl, username, password) next
to the binary, its parent directory, or the working directory. Optional
settings are read from vip-learn-mcp.toml and VIP_LEARN_* environment variables.`,
		Example: `  vip-learn-mcp                          # Serve on stdio
  vip-learn-mcp --config /etc/vip/config.json
  vip-learn-mcp --http :4300              # Serve streamable HTTP
  vip-learn-mcp tools                     # List registered tools
  vip-learn-mcp check                     # Check the upstream status endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the site config JSON (siteUrl, username, password)")
	cmd.PersistentFlags().StringSliceVar(&opts.settingsPaths, "settings", nil, "Settings TOML file(s), applied in order")
	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio")

	cmd.Version = common.GetVersion()
	cmd.SetVersionTemplate(versionTemplate())
	cmd.CompletionOptions.HiddenDefaultCmd = true

	cmd.AddCommand(newToolsCmd(), newCheckCmd(opts))
	return cmd
}

func versionTemplate() string {
	return fmt.Sprintf("vip-learn-mcp %s\n", common.GetFullVersion())
}

// loadConfig resolves the site document and settings files, then applies
// environment overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	settings := opts.settingsPaths
	if len(settings) == 0 {
		settings = config.SettingsSearchPaths()
	}
	cfg, err := config.Load(config.ResolveSitePath(opts.configPath), settings...)
	if err != nil {
		return nil, err
	}
	config.ApplyFlagOverrides(cfg, opts.httpAddr)
	return cfg, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	logger.Info().
		Str("version", common.GetVersion()).
		Str("build", common.GetBuild()).
		Str("commit", common.GetGitCommit()).
		Msg("starting vip-learn-mcp")

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("failed to initialize application")
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.HTTPAddr != "" {
		err = a.ServeHTTP(ctx, cfg.Server.HTTPAddr)
	} else {
		err = a.ServeStdio(ctx, os.Stdin, os.Stdout)
	}
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("server error")
		return err
	}
	return nil
}
