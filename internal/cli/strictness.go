package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var strictnessYear string

// strictnessCmd represents the strictness command
var strictnessCmd = &cobra.Command{
	Use:   "strictness",
	Short: "Compare how often each model reports explicit bans",
	Long: `Strictness shows, per model, the share of explicit and semantic
statements among everything the model reported.

Example:
  manifesto strictness
  manifesto strictness --year 2021`,
	RunE: runStrictness,
}

func init() {
	rootCmd.AddCommand(strictnessCmd)

	strictnessCmd.Flags().StringVar(&strictnessYear, "year", "all", "election year or all")
}

func runStrictness(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd.Context(), func(ctx context.Context, env *environment) error {
		rows, err := env.app.Strictness(strictnessYear)
		if err != nil {
			return err
		}
		if err := env.out.Title("Strenge · %s", strictnessYear); err != nil {
			return err
		}
		return env.out.Strictness(rows)
	})
}
