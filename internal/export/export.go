// Package export writes ranked screening results as CSV or XLSX tables.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/screener/internal/models"
	"github.com/xuri/excelize/v2"
)

// Formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// SheetName is the worksheet that holds results in XLSX exports.
const SheetName = "Results"

// ErrUnknownFormat is returned for export formats other than csv and xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// Header returns the column names. The explanation column is present only when
// at least one result carries an explanation.
func Header(results []*models.ScreenResult) []string {
	h := []string{"id", "score", "snippet"}
	if hasExplanations(results) {
		h = append(h, "explanation")
	}
	return h
}

func hasExplanations(results []*models.ScreenResult) bool {
	for _, r := range results {
		if r.Explanation != "" {
			return true
		}
	}
	return false
}

func rows(results []*models.ScreenResult) [][]string {
	withExplanation := hasExplanations(results)
	out := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{r.ID, FormatScore(r.Score), r.Snippet}
		if withExplanation {
			row = append(row, r.Explanation)
		}
		out = append(out, row)
	}
	return out
}

// FormatScore renders a score with four decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}

// FormatFromPath returns the export format implied by a file name.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Write writes results to w in the given format.
func Write(w io.Writer, format string, results []*models.ScreenResult) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, results)
	case FormatXLSX:
		return WriteXLSX(w, results)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteCSV writes a header row followed by one row per result.
func WriteCSV(w io.Writer, results []*models.ScreenResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(results)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows(results)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a single Results sheet.
func WriteXLSX(w io.Writer, results []*models.ScreenResult) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	all := append([][]string{Header(results)}, rows(results)...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		// Scores stay numeric so spreadsheets can sort them.
		if i > 0 {
			values[1] = results[i-1].Score
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
