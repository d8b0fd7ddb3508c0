package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/manifesto/internal/model"
	"github.com/ppiankov/manifesto/internal/stats"
)

var (
	partiesModel    string
	partiesYear     string
	partiesMode     string
	partiesParty    string
	partiesCategory string
	partiesSearch   string
	partiesSort     string
	partiesTrend    bool
)

// partiesCmd represents the parties command
var partiesCmd = &cobra.Command{
	Use:   "parties",
	Short: "Show one model's statements per party",
	Long: `Parties shows how many explicit and semantic ban statements one model
found per party for one year, followed by the statements themselves.

A model that has no results for the chosen year switches to its newest year;
a year without the chosen model switches to the year's first model.

--sort takes a column (party, category, topic, quote, location); prefix it
with "-" for descending order.

Example:
  manifesto parties --model gpt-4o --year 2021
  manifesto parties --model gpt-4o --party spd --category explizit
  manifesto parties --search tempolimit --sort -party
  manifesto parties --model gemini --trend`,
	RunE: runParties,
}

func init() {
	rootCmd.AddCommand(partiesCmd)

	partiesCmd.Flags().StringVar(&partiesModel, "model", "", "model (default: first model of the year)")
	partiesCmd.Flags().StringVar(&partiesYear, "year", "", "election year (default: newest)")
	partiesCmd.Flags().StringVar(&partiesMode, "mode", "", "categories: all or explicit (default: from config)")
	partiesCmd.Flags().StringVar(&partiesParty, "party", "", "only list statements of one party")
	partiesCmd.Flags().StringVar(&partiesCategory, "category", "", "with --party: explizit or semantisch")
	partiesCmd.Flags().StringVar(&partiesSearch, "search", "", "only list statements containing this text")
	partiesCmd.Flags().StringVar(&partiesSort, "sort", "", "sort column, prefix with - for descending")
	partiesCmd.Flags().BoolVar(&partiesTrend, "trend", false, "also print the model's counts across years")
}

func runParties(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd.Context(), func(ctx context.Context, env *environment) error {
		app := env.app

		mode, err := parseMode(partiesMode, env.cfg)
		if err != nil {
			return err
		}
		if err := app.SetMode(mode); err != nil {
			return err
		}

		if partiesYear != "" {
			if _, err := app.SelectYear(ctx, partiesYear); err != nil {
				return err
			}
		}
		if partiesModel != "" {
			sel, err := app.SelectModel(ctx, partiesModel)
			if err != nil {
				return err
			}
			if partiesYear != "" && sel.Year != partiesYear {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s has no results for %s, showing %s\n", partiesModel, partiesYear, sel.Year)
			}
		}

		if partiesParty != "" || partiesCategory != "" {
			category, err := parseCategory(partiesCategory)
			if err != nil {
				return err
			}
			if err := app.SelectPartyBar(partiesParty, category); err != nil {
				return err
			}
		}
		app.SearchParties(partiesSearch)
		if partiesSort != "" {
			column, err := stats.ParseColumn(strings.TrimPrefix(partiesSort, "-"))
			if err != nil {
				return err
			}
			app.SortParties(column)
			if strings.HasPrefix(partiesSort, "-") {
				app.SortParties(column)
			}
		}

		counts, err := app.PartyCounts()
		if err != nil {
			return err
		}
		rows, err := app.PartiesTable()
		if err != nil {
			return err
		}
		var trend *stats.Trend
		if partiesTrend {
			t, err := app.Trend()
			if err != nil {
				return err
			}
			trend = &t
		}

		sel := app.Selection()
		if env.out.JSON() {
			return env.out.WriteJSON(map[string]any{
				"selection": sel,
				"mode":      app.Mode(),
				"counts":    counts,
				"filter":    app.TableFilter(),
				"rows":      rows,
				"trend":     trend,
			})
		}

		if err := env.out.Title("%s · %s", app.Config().DisplayName(sel.Model), sel.Year); err != nil {
			return err
		}
		if err := env.out.PartyCounts(counts); err != nil {
			return err
		}
		if trend != nil {
			if err := env.out.Title("Verlauf"); err != nil {
				return err
			}
			if err := env.out.Trend(*trend); err != nil {
				return err
			}
		}
		return env.out.PartiesTable(rows)
	})
}

// parseCategory maps the --category flag to a table filter category
func parseCategory(s string) (string, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "explicit", model.CategoryExplicit:
		return model.CategoryExplicit, nil
	case "semantic", model.CategorySemantic:
		return model.CategorySemantic, nil
	}
	return "", fmt.Errorf("unknown category %q (want explizit or semantisch)", s)
}
