package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/vibedraft/internal/api/response"
)

func newDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Word draft commands",
	}

	cmd.AddCommand(newDraftGetCmd())
	cmd.AddCommand(newDraftSubmitCmd())
	cmd.AddCommand(newDraftStartCmd())
	cmd.AddCommand(newDraftPickCmd())

	return cmd
}

func newDraftGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show the draft pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.DraftPool

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s/draft", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDraftSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit <session-id> <word>...",
		Short: "Add words to the draft pool",
		Long: `Add words to the draft pool. Multi-word entries must be quoted:

  vibedraft draft submit <session-id> fire "ancient ruins"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string][]string{"words": args[1:]}
			var result response.SubmitWordsResponse

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/draft/words", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDraftStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <session-id>",
		Short: "Shuffle the pool and begin picking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.DraftPool

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/draft/start", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newDraftPickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pick <session-id> <word>",
		Short: "Pick a word from the pool on your turn",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"word": strings.Join(args[1:], " ")}
			var result response.PickResponse

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/draft/pick", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
