package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/manifesto/internal/stats"
)

var (
	topicsYear           string
	topicsModel          string
	topicsMode           string
	topicsClassification string
	topicsSearch         string
)

// topicsCmd represents the topics command
var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Group statements by topic classification",
	Long: `Topics counts statements per classification (unclassified statements
count as SONSTIGES) and shows the ten largest classifications per party, with
the rest summed up as "Andere".

With --classification it lists the statements of one classification and how
they spread across parties; --search narrows that list.

Example:
  manifesto topics --year 2021
  manifesto topics --model gpt-4o --classification VERKEHR
  manifesto topics --classification VERKEHR --search tempolimit`,
	RunE: runTopics,
}

func init() {
	rootCmd.AddCommand(topicsCmd)

	topicsCmd.Flags().StringVar(&topicsYear, "year", "all", "election year or all")
	topicsCmd.Flags().StringVar(&topicsModel, "model", "all", "model or all")
	topicsCmd.Flags().StringVar(&topicsMode, "mode", "", "categories: all or explicit (default: from config)")
	topicsCmd.Flags().StringVar(&topicsClassification, "classification", "", "list the statements of one classification")
	topicsCmd.Flags().StringVar(&topicsSearch, "search", "", "with --classification: only statements containing this text")
}

func runTopics(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd.Context(), func(ctx context.Context, env *environment) error {
		mode, err := parseMode(topicsMode, env.cfg)
		if err != nil {
			return err
		}
		if err := env.app.SetMode(mode); err != nil {
			return err
		}

		ts, err := env.app.Topics(topicsYear, topicsModel)
		if err != nil {
			return err
		}

		if topicsClassification == "" {
			if topicsSearch != "" {
				return fmt.Errorf("--search needs --classification")
			}
			if err := env.out.Title("Themen · %s · %s", topicsYear, topicsModel); err != nil {
				return err
			}
			return env.out.Topics(ts)
		}

		c, ok := ts.Lookup(topicsClassification)
		if !ok {
			return fmt.Errorf("unknown classification %q", topicsClassification)
		}
		c.Items = stats.SearchItems(c.Items, topicsSearch)
		return env.out.Classification(c)
	})
}
