package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var methodologyYear string

// methodologyCmd represents the methodology command
var methodologyCmd = &cobra.Command{
	Use:   "methodology",
	Short: "Show where in each manifesto the findings were located",
	Long: `Methodology lists every analyzed document with the relative position of
each finding in the text. Positions matched with a score below 90 were found
by fuzzy matching and are marked with "~".

Example:
  manifesto methodology
  manifesto methodology --year 2021 --json`,
	RunE: runMethodology,
}

func init() {
	rootCmd.AddCommand(methodologyCmd)

	methodologyCmd.Flags().StringVar(&methodologyYear, "year", "all", "election year or all")
}

func runMethodology(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd.Context(), func(ctx context.Context, env *environment) error {
		rows, err := env.app.Methodology(methodologyYear)
		if err != nil {
			return err
		}
		if err := env.out.Title("Methodik · %s", methodologyYear); err != nil {
			return err
		}
		return env.out.Methodology(rows)
	})
}
