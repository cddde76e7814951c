package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/vibedraft/internal/api/response"
)

func newWorldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "world",
		Short: "World generation commands",
	}

	cmd.AddCommand(newWorldGenerateCmd())

	return cmd
}

func newWorldGenerateCmd() *cobra.Command {
	var p1Picks, p2Picks []string

	cmd := &cobra.Command{
		Use:   "generate <session-id>",
		Short: "Generate the world once the draft is complete",
		Long: `Generate the world once the draft is complete. This normally happens
automatically after the final pick; use it to retry a failed generation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string][]string{}
			if len(p1Picks) > 0 || len(p2Picks) > 0 {
				req["player1_picks"] = p1Picks
				req["player2_picks"] = p2Picks
			}
			var result response.Session

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/world", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&p1Picks, "player1-picks", nil, "Override player 1's picks")
	cmd.Flags().StringSliceVar(&p2Picks, "player2-picks", nil, "Override player 2's picks")

	return cmd
}

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Card commands",
	}

	cmd.AddCommand(newCardGenerateCmd())
	cmd.AddCommand(newCardHandCmd())
	cmd.AddCommand(newCardFieldCmd())
	cmd.AddCommand(newCardGetCmd())
	cmd.AddCommand(newCardImageCmd())

	return cmd
}

func newCardGenerateCmd() *cobra.Command {
	var themes []string
	var fieldContext string

	cmd := &cobra.Command{
		Use:   "generate <session-id>",
		Short: "Generate a card into your hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if len(themes) > 0 {
				req["themes"] = themes
			}
			if fieldContext != "" {
				req["field_context"] = fieldContext
			}
			var result response.Card

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/cards", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&themes, "themes", nil, "Themes (defaults to your drafted words)")
	cmd.Flags().StringVar(&fieldContext, "field", "", "Description of the current battlefield")

	return cmd
}

func newCardHandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hand <session-id>",
		Short: "List the cards in your hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Card

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s/hand", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCardFieldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "field <session-id>",
		Short: "List the cards on the battlefield",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.Card

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s/field", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCardGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <card-id>",
		Short: "Show a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Card

			if err := client.Get(fmt.Sprintf("/api/v1/cards/%s", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newCardImageCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "image <image-id>",
		Short: "Download a card's art",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, contentType, err := client.GetBytes(fmt.Sprintf("/api/v1/images/%s", args[0]))
			if err != nil {
				return err
			}

			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Saved %d bytes of %s to %s", len(data), contentType, outPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "File to write the image to (required)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
