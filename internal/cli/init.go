// init.go implements the "workscope init" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/workscope-dev/workscope/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml",
	Long: `Create the per-user data directory (~/.workscope) and write a
config.yaml with default server settings. Existing configuration is
left untouched.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := config.DefaultDir()
	if err != nil {
		return err
	}

	if _, err := config.ReadConfig(dir); err == nil {
		fmt.Printf("Config already exists at %s/config.yaml\n", dir)
		return nil
	}

	cfg := config.DefaultConfig()
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}

	if err := config.WriteConfig(dir, cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote %s/config.yaml (server: %s)\n", dir, cfg.Server.BaseURL)
	return nil
}
