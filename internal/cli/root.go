// Package cli is the vibedraft command line client. Every command maps onto
// one API call and prints the result as text or JSON.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd builds the command tree. Flags override the VIBEDRAFT_*
// environment, which overrides the defaults.
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	root := &cobra.Command{
		Use:   "vibedraft",
		Short: "Play vibedraft from the terminal",
		Long: `vibedraft talks to a vibedraft server: accounts, sessions, the word
draft, world and card generation, and live session events.

A token from "player guest", "player register" or "player login" is saved
and reused by later commands.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.LoadToken(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.Timeout)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: VIBEDRAFT_SERVER)")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "Bearer token (env: VIBEDRAFT_TOKEN)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: VIBEDRAFT_TOKEN_FILE)")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text or json (env: VIBEDRAFT_OUTPUT)")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout (env: VIBEDRAFT_TIMEOUT)")

	root.AddCommand(
		newPlayerCmd(),
		newSessionCmd(),
		newDraftCmd(),
		newWorldCmd(),
		newCardCmd(),
		newDevCmd(),
		newEventsCmd(),
		newHealthCmd(),
	)

	return root
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
