package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/screener/internal/cli"
	"github.com/hyperjump/screener/internal/export"
	"github.com/hyperjump/screener/internal/extract"
	"github.com/hyperjump/screener/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	screenJD      string
	screenQuery   string
	screenTopK    int
	screenExplain bool
	screenModel   string
	screenFormat  string
	screenExport  string
	screenLibrary bool
)

var screenCmd = &cobra.Command{
	Use:   "screen [flags] <resume>...",
	Short: "Rank resumes against a job description",
	Long: `Rank resume files against a job description.

The job description comes from --jd (a file, or "-" for stdin) or --query.
Resumes are PDF, DOCX, TXT, ODT or RTF files; unreadable files are ranked
with their error text so they sink to the bottom. With --library the stored
candidate library is screened instead of files.

Examples:
  screener screen --jd job.pdf resumes/*.pdf
  screener screen --query "senior Go engineer, 5+ years" --top-k 3 --explain cv1.docx cv2.pdf
  cat job.txt | screener screen --jd - --export shortlist.xlsx resumes/*
  screener screen --jd job.txt --library --format json`,
	RunE: runScreen,
}

var explainCmd = &cobra.Command{
	Use:   "explain [flags] <resume>",
	Short: "Explain how well one resume fits a job description",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplain,
}

var runCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Show a stored screening run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

func init() {
	screenCmd.Flags().StringVar(&screenJD, "jd", "", "job description file (\"-\" reads stdin)")
	screenCmd.Flags().StringVarP(&screenQuery, "query", "q", "", "job description text")
	screenCmd.Flags().IntVarP(&screenTopK, "top-k", "k", 0, "number of results (0 = configured default)")
	screenCmd.Flags().BoolVar(&screenExplain, "explain", false, "generate an explanation per result")
	screenCmd.Flags().StringVar(&screenModel, "model", "", "explanation model")
	screenCmd.Flags().StringVarP(&screenFormat, "format", "f", "text", "output format: text or json")
	screenCmd.Flags().StringVar(&screenExport, "export", "", "also write results to a .csv or .xlsx file")
	screenCmd.Flags().BoolVar(&screenLibrary, "library", false, "screen the stored candidate library")
	rootCmd.AddCommand(screenCmd)

	explainCmd.Flags().StringVar(&screenJD, "jd", "", "job description file (\"-\" reads stdin)")
	explainCmd.Flags().StringVarP(&screenQuery, "query", "q", "", "job description text")
	explainCmd.Flags().StringVar(&screenModel, "model", "", "explanation model")
	rootCmd.AddCommand(explainCmd)

	runCmd.Flags().StringVarP(&screenFormat, "format", "f", "text", "output format: text or json")
	rootCmd.AddCommand(runCmd)
}

// readJobDescription resolves --query / --jd into text. stdin is read when jd is "-".
func readJobDescription(query, jd string, stdin io.Reader) (string, error) {
	if strings.TrimSpace(query) != "" {
		return query, nil
	}
	switch jd {
	case "":
		return "", models.ErrInvalidRequest
	case "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	text := extract.ExtractFile(jd)
	if extract.IsExtractionFailure(text) {
		return "", fmt.Errorf("%s: %s", jd, text)
	}
	return text, nil
}

// readResumes extracts each file. Failures are kept as text, matching uploads.
func readResumes(paths []string) []models.Resume {
	resumes := make([]models.Resume, 0, len(paths))
	for _, p := range paths {
		resumes = append(resumes, models.Resume{
			ID:   filepath.Base(p),
			Text: extract.ExtractFile(p),
		})
	}
	return resumes
}

func runScreen(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(screenFormat)
	if err != nil {
		return err
	}
	var exportFormat string
	if screenExport != "" {
		if exportFormat, err = export.FormatFromPath(screenExport); err != nil {
			return err
		}
	}
	if screenLibrary && len(args) > 0 {
		return fmt.Errorf("--library does not take resume files")
	}
	jd, err := readJobDescription(screenQuery, screenJD, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	req := &models.ScreenRequest{
		QueryText: jd,
		TopK:      screenTopK,
		Explain:   screenExplain,
		Model:     screenModel,
		Offline:   cfg.Offline,
	}
	var resp *models.ScreenResponse
	if screenLibrary {
		resp, err = components.Screening.ScreenLibrary(cmd.Context(), req)
	} else {
		req.Resumes = readResumes(args)
		resp, err = components.Screening.Screen(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	if err := cli.WriteScreenResults(cmd.OutOrStdout(), resp, format); err != nil {
		return err
	}
	if screenExport != "" {
		if err := writeExport(screenExport, exportFormat, resp.Results); err != nil {
			return err
		}
		logger.Info("results exported", zap.String("path", screenExport), zap.Int("rows", len(resp.Results)))
	}
	return nil
}

func writeExport(path, format string, results []*models.ScreenResult) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return export.Write(f, format, results)
}

func runExplain(cmd *cobra.Command, args []string) error {
	jd, err := readJobDescription(screenQuery, screenJD, cmd.InOrStdin())
	if err != nil {
		return err
	}
	resume := extract.ExtractFile(args[0])
	if extract.IsExtractionFailure(resume) {
		return fmt.Errorf("%s: %s", args[0], resume)
	}

	cfg, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	resp := components.Screening.Explain(cmd.Context(), &models.ExplainRequest{
		QueryText: jd,
		Resume:    resume,
		Model:     screenModel,
		Offline:   cfg.Offline,
	})
	fmt.Fprintln(cmd.OutOrStdout(), resp.Explanation)
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(screenFormat)
	if err != nil {
		return err
	}
	cfg, _, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	run, err := components.Screening.GetRun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if format == cli.OutputJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), run)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (%s)\nJob description: %s\n",
		run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), cli.TruncateWords(run.QueryText, 20))
	return cli.WriteScreenResults(w, &models.ScreenResponse{
		RunID:   run.ID,
		Results: run.Results,
		Total:   len(run.Results),
		Offline: run.Offline,
	}, cli.OutputText)
}
