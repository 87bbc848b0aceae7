package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/foundersignal/validate-cli/internal/market"
	"github.com/foundersignal/validate-cli/internal/model"
)

var (
	marketHypothesis string
	marketGeography  string
	marketPrice      float64
	marketMSC        float64
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Run market sizing for a hypothesis on its own",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		completer, err := initCompleter()
		if err != nil {
			return err
		}

		estimator := market.NewEstimator(completer, nil, cfg.Analysis)
		result, err := estimator.Estimate(ctx, model.Hypothesis{
			Text:      marketHypothesis,
			Geography: marketGeography,
			Price:     marketPrice,
			MSC:       marketMSC,
		})
		if err != nil {
			return eris.Wrap(err, "market sizing")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	marketCmd.Flags().StringVar(&marketHypothesis, "hypothesis", "", "hypothesis text (required)")
	marketCmd.Flags().StringVar(&marketGeography, "geography", "", "market geography (default from config)")
	marketCmd.Flags().Float64Var(&marketPrice, "price", 0, "target monthly price in USD (default from config)")
	marketCmd.Flags().Float64Var(&marketMSC, "msc", 0, "annual revenue goal in USD (default from config)")
	_ = marketCmd.MarkFlagRequired("hypothesis")
	rootCmd.AddCommand(marketCmd)
}
