package fetcher

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/foundersignal/validate-cli/internal/model"
)

// signalColumns is the expected header of a review-export sheet. Column order
// is fixed by the export format; id may be blank.
var signalColumns = []string{"id", "source", "community", "title", "body", "weight", "created_at"}

var validSources = map[model.SignalSource]struct{}{
	model.SourceForum:      {},
	model.SourceAppStore:   {},
	model.SourcePlayStore:  {},
	model.SourceReviewSite: {},
}

// ParseSignalsXLSX reads a review-export spreadsheet into signals. Rows with
// an empty body or an unknown source are skipped and counted, not fatal.
func ParseSignalsXLSX(path string) ([]model.Signal, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("fetcher: xlsx %s has no sheets", path)
	}
	sheet := f.Sheets[0]

	var signals []model.Signal
	skipped := 0
	for i, row := range sheet.Rows {
		if i == 0 {
			continue // header
		}

		cells := rowToStrings(row)
		sig, ok := rowToSignal(cells)
		if !ok {
			skipped++
			continue
		}
		signals = append(signals, sig)
	}

	if skipped > 0 {
		zap.L().Warn("fetcher: skipped malformed xlsx rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
			zap.Int("parsed", len(signals)),
		)
	}
	return signals, nil
}

func rowToSignal(cells []string) (model.Signal, bool) {
	if len(cells) < len(signalColumns) {
		padded := make([]string, len(signalColumns))
		copy(padded, cells)
		cells = padded
	}

	source := model.SignalSource(strings.ToLower(strings.TrimSpace(cells[1])))
	if _, ok := validSources[source]; !ok {
		return model.Signal{}, false
	}

	body := strings.TrimSpace(cells[4])
	if body == "" {
		return model.Signal{}, false
	}

	id := strings.TrimSpace(cells[0])
	if id == "" {
		id = uuid.New().String()
	}

	weight, err := strconv.ParseFloat(strings.TrimSpace(cells[5]), 64)
	if err != nil {
		weight = 0
	}

	createdAt := parseTimestamp(strings.TrimSpace(cells[6]))

	return model.Signal{
		ID:        id,
		Source:    source,
		Community: strings.TrimSpace(cells[2]),
		Title:     strings.TrimSpace(cells[3]),
		Body:      body,
		Weight:    weight,
		CreatedAt: createdAt,
	}, true
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
