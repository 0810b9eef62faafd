// Package cli formats screening output for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hyperjump/screener/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	separator     = "─────────────────────────────────────────────────────────"
	snippetLength = 200
)

var (
	rankColor    = color.New(color.FgCyan, color.Bold)
	idColor      = color.New(color.Bold)
	scoreColor   = color.New(color.FgGreen)
	explainColor = color.New(color.FgYellow)
	subtleColor  = color.New(color.Faint)
	warningColor = color.New(color.FgRed)
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text or json)", s)
	}
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteScreenResults writes a screening response to w in the given format.
func WriteScreenResults(w io.Writer, response *models.ScreenResponse, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, response)
	}
	writeScreenResultsText(w, response)
	return nil
}

func writeScreenResultsText(w io.Writer, response *models.ScreenResponse) {
	mode := "remote"
	if response.Offline {
		mode = "offline"
	}
	fmt.Fprintf(w, "\nRanked %d of %d candidates in %dms (%s)\n\n",
		response.Total, response.Candidates, response.TookMs, mode)
	if len(response.Results) == 0 {
		fmt.Fprintln(w, warningColor.Sprint("No candidates matched."))
		return
	}
	for _, r := range response.Results {
		writeOneResult(w, r)
	}
}

func writeOneResult(w io.Writer, r *models.ScreenResult) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%s %s | Score: %s %s\n",
		rankColor.Sprintf("#%d", r.Rank),
		idColor.Sprint(r.ID),
		scoreColor.Sprintf("%.4f", r.Score),
		subtleColor.Sprintf("(similarity %.4f, boost %.2f)", r.Similarity, r.Boost))
	if r.Path != "" {
		fmt.Fprintf(w, "Path: %s\n", r.Path)
	}
	fmt.Fprintf(w, "\n%s\n", Truncate(r.Snippet, snippetLength))
	if r.Explanation != "" {
		fmt.Fprintf(w, "\n%s %s\n", explainColor.Sprint("Why:"), r.Explanation)
	}
	fmt.Fprintln(w)
}

// WriteCandidateHits writes keyword search hits over the library.
func WriteCandidateHits(w io.Writer, query string, hits []models.CandidateHit, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, map[string]interface{}{"query": query, "results": hits, "total": len(hits)})
	}
	fmt.Fprintf(w, "\nFound %d candidates for %q\n\n", len(hits), query)
	for i, h := range hits {
		fmt.Fprintf(w, "%s %s | Score: %s\n", rankColor.Sprintf("#%d", i+1), idColor.Sprint(h.ID), scoreColor.Sprintf("%.4f", h.Score))
		if h.Snippet != "" {
			fmt.Fprintf(w, "  %s\n", TruncateWords(h.Snippet, 30))
		}
	}
	return nil
}

// PrintScreenResults prints a screening response to stdout in text format.
func PrintScreenResults(response *models.ScreenResponse) {
	_ = WriteScreenResults(os.Stdout, response, OutputText)
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
