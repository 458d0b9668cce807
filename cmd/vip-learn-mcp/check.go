package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vip-learn-mcp/internal/common"
	"github.com/bobmcallan/vip-learn-mcp/internal/mcp"
)

var errUnhealthy = errors.New("upstream is unhealthy")

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the upstream status endpoint once",
		Long: `check loads the site config, calls the VIP Learn status endpoint and prints
the same narrative the status tool reports. It exits non-zero when the
upstream is unhealthy. With --verbose the relay's debug trace for the check
is printed after the narrative.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			logger := common.NewSilentLogger()
			if verbose {
				logger = common.NewLoggerFromConfig(common.LoggingConfig{Level: "debug", Outputs: []string{"memory"}})
			}

			id := common.NewCorrelationID()
			ctx := common.WithCorrelationID(cmd.Context(), id)

			relay := mcp.NewRelay(cfg, logger)
			health := relay.CheckStatus(ctx)
			message := health.Message()

			if err := mcp.NewStatusLog(cfg.Status.LogFile).Append(message); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to write status log: %v\n", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, message)
			if verbose {
				for _, line := range logger.CorrelationLogs(id) {
					fmt.Fprintf(out, "  %s\n", line)
				}
			}

			if !health.Healthy {
				return errUnhealthy
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print the relay log trace for the check")
	return cmd
}
