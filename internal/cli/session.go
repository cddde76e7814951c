package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/vibedraft/internal/api/response"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionMineCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionRoleCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new session and wait for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Post("/api/v1/sessions", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions waiting for a second player",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Session

			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List sessions you are seated in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Session

			if err := client.Get("/api/v1/sessions/mine", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Get session details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <session-id>",
		Short: "Take the second seat in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Session

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/join", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role <session-id>",
		Short: "Show your seat in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Role

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s/role", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
