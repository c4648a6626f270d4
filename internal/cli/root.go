// Package cli defines Cobra command definitions for the workscope CLI.
// This file contains the root command, shared controller wiring, and
// help output.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/workscope-dev/workscope/internal/api"
	"github.com/workscope-dev/workscope/internal/config"
	"github.com/workscope-dev/workscope/internal/conversation"
	"github.com/workscope-dev/workscope/internal/log"
	"github.com/workscope-dev/workscope/internal/session"
	"github.com/workscope-dev/workscope/internal/tui"
	"github.com/workscope-dev/workscope/internal/tui/app"
)

var (
	serverURL string
	version   = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "workscope",
	Short: "Chat client for the work scope generator",
	Long: `Workscope talks to a work scope generator backend. Upload a project
document or chat directly; the generated scope, effort estimates and
tech stack render in the terminal. Sessions persist locally so every
conversation can be resumed.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		ctrl, err := newController()
		if err != nil {
			return err
		}

		return tui.Run(app.New(ctrl))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newController builds the controller every command runs against: the
// session store, the event log and the backend client, all rooted in
// the per-user data directory.
func newController() (*conversation.Controller, error) {
	dir, err := config.DefaultDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.ReadConfig(dir)
	if err != nil {
		// Config not found or invalid, use defaults
		cfg = config.DefaultConfig()
	}
	if serverURL != "" {
		cfg.Server.BaseURL = serverURL
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	store, err := session.Open(filepath.Join(dir, "sessions.json"))
	if err != nil {
		return nil, err
	}

	logger, err := log.NewLogger(dir)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.Server.BaseURL, time.Duration(cfg.Server.Timeout)*time.Second)
	return conversation.NewController(store, client, logger), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (overrides config.yaml)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(voiceCmd)
	rootCmd.AddCommand(deleteCmd)
}
