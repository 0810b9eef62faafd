package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/hyperjump/screener/internal/models"
)

func init() {
	color.NoColor = true
}

func sampleResponse() *models.ScreenResponse {
	return &models.ScreenResponse{
		RunID:      "run-1",
		Total:      1,
		Candidates: 2,
		TookMs:     42,
		Offline:    true,
		Results: []*models.ScreenResult{
			{
				Rank:        1,
				ID:          "jane.pdf",
				Score:       0.93,
				Similarity:  0.88,
				Boost:       0.05,
				Snippet:     "Go engineer, 5 years",
				Explanation: "5 years experience; matched keywords: engineer.",
				Path:        "/inbox/jane.pdf",
			},
		},
	}
}

func TestWriteScreenResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteScreenResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteScreenResults(json): %v", err)
	}
	var decoded models.ScreenResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.RunID != "run-1" || len(decoded.Results) != 1 || decoded.Results[0].ID != "jane.pdf" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteScreenResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScreenResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatalf("WriteScreenResults(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Ranked 1 of 2 candidates", "42ms", "offline", "#1", "jane.pdf", "0.9300", "boost 0.05", "Path: /inbox/jane.pdf", "Go engineer, 5 years", "Why: 5 years experience"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteScreenResults_textEmpty(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteScreenResults(&buf, &models.ScreenResponse{}, OutputText)
	if !strings.Contains(buf.String(), "No candidates matched.") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteCandidateHits(t *testing.T) {
	hits := []models.CandidateHit{{ID: "jane", Score: 1.5, Snippet: "Kubernetes operator"}}
	var buf bytes.Buffer
	if err := WriteCandidateHits(&buf, "kubernetes", hits, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `Found 1 candidates for "kubernetes"`) || !strings.Contains(out, "Kubernetes operator") {
		t.Errorf("unexpected output:\n%s", out)
	}

	buf.Reset()
	if err := WriteCandidateHits(&buf, "kubernetes", hits, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || decoded.Total != 1 {
		t.Errorf("json output: %s (err %v)", buf.String(), err)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"empty", "", 5, ""},
		{"short", "hi", 5, "hi"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world", 5, "hello..."},
		{"runes", "héllo wörld", 7, "héllo w..."},
		{"maxLen zero", "ab", 0, "ab"},
		{"maxLen negative", "ab", -1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWords int
		want     string
	}{
		{"empty", "", 3, ""},
		{"few words", "one two", 3, "one two"},
		{"exact", "one two three", 3, "one two three"},
		{"more", "one two three four", 3, "one two three..."},
		{"single long", "word", 1, "word"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWords(tt.s, tt.maxWords)
			if got != tt.want {
				t.Errorf("TruncateWords(%q, %d) = %q, want %q", tt.s, tt.maxWords, got, tt.want)
			}
		})
	}
}

func TestPrintScreenResults(t *testing.T) {
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() {
		os.Stdout = oldStdout
		_ = w.Close()
	}()
	PrintScreenResults(&models.ScreenResponse{})
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	if !strings.Contains(buf.String(), "Ranked 0 of 0 candidates") {
		t.Errorf("PrintScreenResults should write to stdout; got %q", buf.String())
	}
}
