package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/manifesto/internal/consensus"
	"github.com/ppiankov/manifesto/internal/model"
	"github.com/ppiankov/manifesto/internal/score"
)

var (
	consensusYear   string
	consensusRadius int
	consensusMode   string
	consensusModels []string
	consensusBand   string
	consensusParty  string
	summaryOnly     bool
)

// consensusCmd represents the consensus command
var consensusCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Show where the models agree for one election year",
	Long: `Consensus clusters the passages each model flagged in a manifesto and
scores every cluster by the share of models that found it:

  high    ≥ 80% of the models
  medium  ≥ 50%
  low     below 50%

The band counts per party come first, then the detail list. --band (and
optionally --party, which needs --band) narrows the detail list the way a click on a bar does.

Example:
  manifesto consensus --year 2021
  manifesto consensus --year 2021 --radius 200 --mode explicit
  manifesto consensus --year 2021 --models gpt-4o,gemini --band high --party spd`,
	RunE: runConsensus,
}

func init() {
	rootCmd.AddCommand(consensusCmd)

	consensusCmd.Flags().StringVar(&consensusYear, "year", "", "election year (default: newest)")
	consensusCmd.Flags().IntVar(&consensusRadius, "radius", 0, "clustering radius in characters, clamped to [0, consensus.max_radius] (default: from config)")
	consensusCmd.Flags().StringVar(&consensusMode, "mode", "", "categories: all or explicit (default: from config)")
	consensusCmd.Flags().StringSliceVar(&consensusModels, "models", nil, "models to include (default: from config, else all)")
	consensusCmd.Flags().StringVar(&consensusBand, "band", "", "only list clusters of one band: high, medium, low")
	consensusCmd.Flags().StringVar(&consensusParty, "party", "", "only list clusters of one party (with --band)")
	consensusCmd.Flags().BoolVar(&summaryOnly, "summary", false, "print the band counts only")
}

func runConsensus(cmd *cobra.Command, args []string) error {
	if err := checkBandFlags(consensusBand, consensusParty); err != nil {
		return err
	}
	radiusSet := cmd.Flags().Changed("radius")

	return withDashboard(cmd.Context(), func(ctx context.Context, env *environment) error {
		mode, err := parseMode(consensusMode, env.cfg)
		if err != nil {
			return err
		}
		req := consensusRequest(env.cfg, mode, consensusRadius, radiusSet)

		result, err := env.app.RenderConsensus(req)
		if err != nil {
			return fmt.Errorf("aggregate: %w", err)
		}

		if consensusBand != "" {
			band, ok := score.ParseBand(consensusBand)
			if !ok {
				return fmt.Errorf("unknown band %q (want high, medium or low)", consensusBand)
			}
			if err := env.app.SelectConsensusBand(consensusParty, result.Request.Year, band); err != nil {
				return err
			}
		}

		if env.out.JSON() {
			return env.out.WriteJSON(map[string]any{
				"request": result.Request,
				"summary": env.app.ConsensusSummary(),
				"filter":  env.app.ConsensusFilter(),
				"cards":   env.app.ConsensusCards(),
			})
		}

		if err := env.out.Title("Konsens %s · Radius %d · %s", result.Request.Year, result.Request.Radius, result.Request.Mode); err != nil {
			return err
		}
		if err := env.out.ConsensusSummary(env.app.ConsensusSummary()); err != nil {
			return err
		}
		if summaryOnly {
			return nil
		}
		return env.out.ConsensusCards(env.app.ConsensusCards())
	})
}

// checkBandFlags rejects a party narrowing without a band to narrow
func checkBandFlags(band, party string) error {
	if party != "" && band == "" {
		return fmt.Errorf("--party %s needs --band", party)
	}
	return nil
}

// consensusRequest fills the aggregation request from the flags, taking the
// radius and model list from cfg when the flags were not given. An explicit
// radius is passed through unchanged and clamped by the dashboard.
func consensusRequest(cfg *model.Config, mode model.FilterMode, radius int, radiusSet bool) consensus.Request {
	req := consensus.Request{
		Year:   consensusYear,
		Radius: radius,
		Mode:   mode,
		Models: consensusModels,
	}
	if !radiusSet {
		req.Radius = cfg.Consensus.Radius
	}
	if req.Models == nil && len(cfg.Consensus.Models) > 0 {
		req.Models = cfg.Consensus.Models
	}
	return req
}
