package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/netrequester/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a netreq config in the current directory",
	Long: `Initialize a netreq config in the current directory.

This creates:
  - .netreq.yaml   - Configuration file with dev, staging and prod environments

Examples:
  netreq init
  netreq init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, config.ConfigFilenames[0])
	if !forceInit {
		if _, err := os.Stat(configFile); err == nil {
			return usageError(fmt.Errorf("file already exists: %s (use --force to overwrite)", configFile))
		}
	}

	if err := starterConfig().SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nnetreq project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'netreq call /health' to call the dev environment.\n")
	return nil
}

func starterConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{
		"User-Agent": "netreq/" + version,
	}
	cfg.Environments = map[string]map[string]any{
		"dev": {
			"baseUrl": "http://localhost:3000",
		},
		"staging": {
			"baseUrl": "https://staging.api.example.com",
			"token":   "${STAGING_TOKEN}",
		},
		"prod": {
			"baseUrl": "https://api.example.com",
			"token":   "${PROD_TOKEN}",
		},
	}
	return cfg
}
