package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/vip-learn-mcp/internal/mcp"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools this server registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := mcp.ValidateDescriptors(mcp.APITools); err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPARAM\tENDPOINT\tDESCRIPTION")
			fmt.Fprintf(w, "%s\t-\t%s\t%s\n", mcp.StatusToolName, mcp.StatusPath, "Report server liveness and upstream health")
			for _, d := range mcp.APITools {
				fmt.Fprintf(w, "%s\t%s -> %s\t%s\t%s\n", d.Name, d.ParamName, d.ParamKey, d.Endpoint, d.Description)
			}
			return w.Flush()
		},
	}
}
