package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/foundersignal/validate-cli/internal/model"
)

func writeSignalsXLSX(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("signals")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, col := range signalColumns {
		header.AddCell().SetString(col)
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestParseSignalsXLSX(t *testing.T) {
	path := writeSignalsXLSX(t, [][]string{
		{"rev-1", "app_store", "com.acme.invoice", "Crashes on export", "App crashes every time I export a PDF.", "14", "2026-03-02T10:00:00Z"},
		{"", "forum", "r/freelance", "", "Invoicing takes me hours every month.", "not-a-number", "2026-03-01"},
	})

	signals, err := ParseSignalsXLSX(path)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	first := signals[0]
	assert.Equal(t, "rev-1", first.ID)
	assert.Equal(t, model.SourceAppStore, first.Source)
	assert.Equal(t, "com.acme.invoice", first.Community)
	assert.Equal(t, "Crashes on export", first.Title)
	assert.Equal(t, 14.0, first.Weight)
	assert.Equal(t, 2026, first.CreatedAt.Year())

	second := signals[1]
	assert.NotEmpty(t, second.ID, "blank id gets generated")
	assert.Equal(t, model.SourceForum, second.Source)
	assert.Zero(t, second.Weight, "unparseable weight defaults to zero")
	assert.Equal(t, 2026, second.CreatedAt.Year())
}

func TestParseSignalsXLSX_SkipsMalformedRows(t *testing.T) {
	path := writeSignalsXLSX(t, [][]string{
		{"rev-1", "app_store", "com.acme.invoice", "", "Valid review body.", "1", "2026-03-02"},
		{"rev-2", "carrier_pigeon", "nowhere", "", "Unknown source.", "1", "2026-03-02"},
		{"rev-3", "forum", "r/freelance", "", "", "1", "2026-03-02"},
	})

	signals, err := ParseSignalsXLSX(path)
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "rev-1", signals[0].ID)
}

func TestParseSignalsXLSX_MissingFile(t *testing.T) {
	_, err := ParseSignalsXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}
