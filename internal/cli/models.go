package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	modelsParty string
	modelsYear  string
	modelsMode  string
	showTopics  bool
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Compare what each model found for one party",
	Long: `Models sums, per model, the explicit and semantic statements found for
one party in one year or across all years.

Example:
  manifesto models --party spd
  manifesto models --party afd --year 2021 --topics`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVar(&modelsParty, "party", "", "party to compare (required)")
	modelsCmd.Flags().StringVar(&modelsYear, "year", "all", "election year or all")
	modelsCmd.Flags().StringVar(&modelsMode, "mode", "", "categories: all or explicit (default: from config)")
	modelsCmd.Flags().BoolVar(&showTopics, "topics", false, "list each model's statements")
	_ = modelsCmd.MarkFlagRequired("party")
}

func runModels(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd.Context(), func(ctx context.Context, env *environment) error {
		mode, err := parseMode(modelsMode, env.cfg)
		if err != nil {
			return err
		}
		if err := env.app.SetMode(mode); err != nil {
			return err
		}

		counts, err := env.app.ModelsForParty(modelsParty, modelsYear)
		if err != nil {
			return err
		}
		if env.out.JSON() {
			return env.out.WriteJSON(counts)
		}

		if err := env.out.Title("%s · %s", modelsParty, modelsYear); err != nil {
			return err
		}
		if err := env.out.ModelCounts(modelsParty, counts); err != nil {
			return err
		}
		if !showTopics {
			return nil
		}
		for _, c := range counts {
			if err := env.out.Title("%s (%d)", env.app.Config().DisplayName(c.Model), len(c.Topics)); err != nil {
				return err
			}
			if err := env.out.TopicList(c.Topics); err != nil {
				return err
			}
		}
		return nil
	})
}
