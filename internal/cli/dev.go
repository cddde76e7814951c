package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/vibedraft/internal/api/response"
)

func newDevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development helpers (server must run in dev mode)",
	}

	cmd.AddCommand(newDevSessionCmd())
	cmd.AddCommand(newDevBotPickCmd())
	cmd.AddCommand(newDevSkipCmd())

	return cmd
}

func newDevSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Create a session against the bot player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Post("/api/v1/dev/sessions", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDevBotPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot-pick <session-id>",
		Short: "Make the bot pick if it is its turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.BotPickResponse

			if err := client.Post(fmt.Sprintf("/api/v1/dev/sessions/%s/bot-pick", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDevSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip-to-play <session-id>",
		Short: "Skip the draft and start play in a preset world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Post(fmt.Sprintf("/api/v1/dev/sessions/%s/skip-to-play", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
