package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/foundersignal/validate-cli/internal/model"
	"github.com/foundersignal/validate-cli/internal/verdict"
)

var (
	verdictPain        float64
	verdictMarket      float64
	verdictCompetition float64
	verdictTiming      float64
	verdictCritical    bool
)

// verdictOutput pairs the computed score with its rendered message.
type verdictOutput struct {
	Score   float64              `json:"score"`
	Missing []model.Dimension    `json:"missing,omitempty"`
	Message model.VerdictMessage `json:"message"`
}

var verdictCmd = &cobra.Command{
	Use:   "verdict",
	Short: "Compute a verdict from dimension sub-scores",
	Long:  "Weighted-averages the provided dimension scores (0-10) and renders the verdict message. Dimensions left at -1 are treated as missing and excluded from the average.",
	RunE: func(cmd *cobra.Command, args []string) error {
		agg := verdict.NewAggregator(cfg.Analysis)

		dims := model.DimensionScores{}
		if verdictPain >= 0 {
			dims.Pain = &verdictPain
		}
		if verdictMarket >= 0 {
			dims.Market = &verdictMarket
		}
		if verdictCompetition >= 0 {
			dims.Competition = &verdictCompetition
		}
		if verdictTiming >= 0 {
			dims.Timing = &verdictTiming
		}

		score, missing, _ := agg.WeightedScore(dims)
		out := verdictOutput{
			Score:   score,
			Missing: missing,
			Message: agg.ScoreToMessage(score, verdictCritical),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	verdictCmd.Flags().Float64Var(&verdictPain, "pain", -1, "pain sub-score 0-10 (-1 = missing)")
	verdictCmd.Flags().Float64Var(&verdictMarket, "market", -1, "market sub-score 0-10 (-1 = missing)")
	verdictCmd.Flags().Float64Var(&verdictCompetition, "competition", -1, "competition sub-score 0-10 (-1 = missing)")
	verdictCmd.Flags().Float64Var(&verdictTiming, "timing", -1, "timing sub-score 0-10 (-1 = missing)")
	verdictCmd.Flags().BoolVar(&verdictCritical, "critical", false, "set when dealbreaker concerns exist")
	rootCmd.AddCommand(verdictCmd)
}
