package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd builds the mcp-agent command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "mcp-agent",
		Short:        "MCP Agent configuration tooling",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to the config file (discovered by upward search when empty)")
	root.PersistentFlags().String("env-file", "", "path to a .env file loaded before resolution")

	root.AddCommand(
		ConfigCmd(),
	)

	return root
}
