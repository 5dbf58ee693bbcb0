package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lastmile-ai/mcp-agent-go/pkg/config"
	"github.com/lastmile-ai/mcp-agent-go/pkg/logger"
)

// ConfigCmd returns the config command group.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management and diagnostics",
	}

	cmd.AddCommand(
		configShowCmd(),
		configValidateCmd(),
		configPathCmd(),
	)

	return cmd
}

// configShowCmd prints the resolved effective settings. Sensitive values
// are redacted by their marshalers.
func configShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := resolveSettings(cmd)
			if err != nil {
				return err
			}

			var out []byte
			switch format {
			case "json":
				out, err = json.MarshalIndent(settings, "", "  ")
			case "yaml":
				out, err = yaml.Marshal(settings)
			default:
				return fmt.Errorf("unsupported format %q (yaml or json)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to marshal settings: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml or json)")
	return cmd
}

// configValidateCmd resolves the configuration and reports validity.
func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Resolve the configuration and report validation errors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := resolveSettings(cmd)
			if err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			if err := logger.SetupFromSettings(settings.Logger); err != nil {
				return err
			}
			logger.Info("configuration valid",
				"execution_engine", settings.ExecutionEngine,
				"servers", len(settings.MCP.Servers),
			)
			fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
			return nil
		},
	}
}

// configPathCmd prints the discovered config and secrets file locations.
func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the discovered config and secrets file paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			locator := config.NewLocator()
			if path, ok := locator.FindConfig(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "config: %s\n", path)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "config: (not found)")
			}
			if path, ok := locator.FindSecrets(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "secrets: %s\n", path)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "secrets: (not found)")
			}
			return nil
		},
	}
}

// resolveSettings loads the env file when requested and resolves settings
// through the process-wide entry point.
func resolveSettings(cmd *cobra.Command) (*config.Settings, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	return config.GetSettings(configFile)
}
