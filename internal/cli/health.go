package cli

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Long:  "Check server health. With --wait, keep polling until the server answers or the wait elapses.",
		RunE: func(cmd *cobra.Command, args []string) error {
			check := func() (HealthResult, error) {
				var result HealthResult
				err := client.Get("/api/v1/health", &result)
				return result, err
			}

			var (
				result HealthResult
				err    error
			)
			if wait > 0 {
				ctx, cancel := context.WithTimeout(cmd.Context(), wait)
				defer cancel()
				result, err = backoff.Retry(ctx, check,
					backoff.WithBackOff(backoff.NewExponentialBackOff()),
					backoff.WithMaxElapsedTime(wait),
				)
			} else {
				result, err = check()
			}
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "keep retrying for up to this long")
	return cmd
}
