package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/fetcher"
	"github.com/foundersignal/validate-cli/internal/model"
)

var (
	analyzeHypothesis string
	analyzeSubject    string
	analyzeGeography  string
	analyzePrice      float64
	analyzeMSC        float64
	analyzeSignals    string
	analyzeJobID      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full validation analysis for a hypothesis",
	Long:  "Gates, classifies, and scores a signal batch against a hypothesis, then persists the verdict. Signals come from a file (--signals) or a previously imported job (--job).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		jobID := analyzeJobID
		if jobID == "" {
			if analyzeSignals == "" {
				return eris.New("either --signals or --job is required")
			}

			signals, err := loadSignalsFile(analyzeSignals)
			if err != nil {
				return err
			}
			if len(signals) == 0 {
				return eris.Errorf("no signals found in %s", analyzeSignals)
			}

			job, err := env.Store.CreateJob(ctx, model.Hypothesis{
				Text:      analyzeHypothesis,
				Subject:   analyzeSubject,
				Geography: analyzeGeography,
				Price:     analyzePrice,
				MSC:       analyzeMSC,
			})
			if err != nil {
				return err
			}
			if err := env.Store.SaveSignals(ctx, job.ID, signals); err != nil {
				return err
			}
			jobID = job.ID
			zap.L().Info("analyze: job created",
				zap.String("job_id", jobID),
				zap.Int("signals", len(signals)),
			)
		}

		result, err := env.Pipeline.RunJob(ctx, jobID)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

// loadSignalsFile reads a signal batch from an XLSX review export or a JSON
// array, keyed off the file extension.
func loadSignalsFile(path string) ([]model.Signal, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return fetcher.ParseSignalsXLSX(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read signals %s", path)
		}
		var signals []model.Signal
		if err := json.Unmarshal(data, &signals); err != nil {
			return nil, eris.Wrapf(err, "parse signals %s", path)
		}
		return signals, nil
	default:
		return nil, eris.Errorf("unsupported signals file %s: want .xlsx or .json", path)
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeHypothesis, "hypothesis", "", "hypothesis text (required unless --job)")
	analyzeCmd.Flags().StringVar(&analyzeSubject, "subject", "", "subject app name for gating (optional)")
	analyzeCmd.Flags().StringVar(&analyzeGeography, "geography", "", "market geography (default from config)")
	analyzeCmd.Flags().Float64Var(&analyzePrice, "price", 0, "target monthly price in USD (default from config)")
	analyzeCmd.Flags().Float64Var(&analyzeMSC, "msc", 0, "annual revenue goal in USD (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeSignals, "signals", "", "signal batch file (.xlsx or .json)")
	analyzeCmd.Flags().StringVar(&analyzeJobID, "job", "", "run an already imported job instead of reading a file")
	rootCmd.AddCommand(analyzeCmd)
}
