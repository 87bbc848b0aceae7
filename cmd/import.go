package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/fetcher"
	"github.com/foundersignal/validate-cli/internal/model"
)

var (
	importHypothesis string
	importSubject    string
	importFile       string
	importFTPURL     string
	importSource     string
	importCommunity  string
	importLimit      int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a signal batch into a new job",
	Long:  "Creates a job for a hypothesis and fills it with signals from a local file (--file), an FTP review-export drop (--ftp-url), or the upstream feed (--source + --community). The job can then be analyzed with 'analyze --job'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		signals, err := collectSignals(ctx)
		if err != nil {
			return err
		}
		if len(signals) == 0 {
			return eris.New("import: no signals collected")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		job, err := st.CreateJob(ctx, model.Hypothesis{
			Text:    importHypothesis,
			Subject: importSubject,
		})
		if err != nil {
			return err
		}
		if err := st.SaveSignals(ctx, job.ID, signals); err != nil {
			return err
		}

		zap.L().Info("import: signals stored",
			zap.String("job_id", job.ID),
			zap.Int("signals", len(signals)),
		)
		fmt.Println(job.ID)
		return nil
	},
}

// collectSignals reads the batch from whichever source flag was given.
func collectSignals(ctx context.Context) ([]model.Signal, error) {
	switch {
	case importFile != "":
		return loadSignalsFile(importFile)

	case importFTPURL != "":
		ftpFetcher := fetcher.NewFTPFetcher(time.Duration(cfg.Feed.FTPTimeoutSecs) * time.Second)
		staged := filepath.Join(os.TempDir(), fmt.Sprintf("validate-import-%d.xlsx", time.Now().UnixNano()))
		defer os.Remove(staged) //nolint:errcheck

		n, err := ftpFetcher.DownloadToFile(ctx, importFTPURL, staged)
		if err != nil {
			return nil, err
		}
		zap.L().Info("import: ftp drop staged", zap.String("url", importFTPURL), zap.Int64("bytes", n))
		return fetcher.ParseSignalsXLSX(staged)

	case importSource != "" && importCommunity != "":
		feed := fetcher.NewFeedClient(cfg.Feed)
		return feed.FetchSignals(ctx, model.SignalSource(importSource), importCommunity, importLimit)

	default:
		return nil, eris.New("import: one of --file, --ftp-url, or --source with --community is required")
	}
}

func init() {
	importCmd.Flags().StringVar(&importHypothesis, "hypothesis", "", "hypothesis text (required)")
	importCmd.Flags().StringVar(&importSubject, "subject", "", "subject app name for gating (optional)")
	importCmd.Flags().StringVar(&importFile, "file", "", "local signal batch file (.xlsx or .json)")
	importCmd.Flags().StringVar(&importFTPURL, "ftp-url", "", "FTP URL of a review-export XLSX drop")
	importCmd.Flags().StringVar(&importSource, "source", "", "feed source (forum, app_store, play_store, review_site)")
	importCmd.Flags().StringVar(&importCommunity, "community", "", "feed community (subreddit, app id, review-site slug)")
	importCmd.Flags().IntVar(&importLimit, "limit", 200, "max signals to fetch from the feed")
	_ = importCmd.MarkFlagRequired("hypothesis")
	rootCmd.AddCommand(importCmd)
}
