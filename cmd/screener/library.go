package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hyperjump/screener/internal/cli"
	"github.com/hyperjump/screener/internal/keyword"
	"github.com/hyperjump/screener/internal/models"
	"github.com/hyperjump/screener/internal/storage"
	"github.com/hyperjump/screener/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	searchLimit  int
	searchFuzzy  bool
	searchFormat string
	statusFormat string
	statusServer string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file-or-directory>...",
	Short: "Add resumes to the candidate library",
	Long: `Add resume files to the candidate library. Directories are walked
recursively; files with unsupported extensions are skipped. Files that have
not changed since they were last ingested are skipped too.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Remove candidates from the library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

var searchCmd = &cobra.Command{
	Use:   "search [flags] <query>",
	Short: "Keyword search over the candidate library",
	Long: `Keyword search over stored candidates. The query is all remaining
arguments joined by spaces. Use --fuzzy to tolerate spelling mistakes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library, index and cache status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(deleteCmd)

	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "enable typo tolerance")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "text", "output format: text or json")
	rootCmd.AddCommand(searchCmd)

	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "output format: text or json")
	statusCmd.Flags().StringVar(&statusServer, "server", "", "query a running server instead of local storage (e.g. http://localhost:8080)")
	rootCmd.AddCommand(statusCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	total := 0
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			n, err := components.Indexer.IngestDirectory(ctx, path, cfg.Watch.Extensions)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			total += n
			continue
		}
		skipped, err := components.Indexer.IngestFile(ctx, path, cfg.Watch.Extensions)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		if skipped {
			logger.Debug("file skipped", zap.String("path", path))
			continue
		}
		total++
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d file(s)\n", total)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	for _, id := range args {
		if err := components.Indexer.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	}
	return nil
}

// buildSearchQuery joins positional args into one query.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(searchFormat)
	if err != nil {
		return err
	}
	query := buildSearchQuery(args)
	if query == "" {
		return fmt.Errorf("query is required")
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

	results, err := components.KeywordIndex.Search(cmd.Context(), query, searchLimit,
		&keyword.SearchOptions{FuzzyEnabled: searchFuzzy})
	if err != nil {
		return err
	}
	hits := make([]models.CandidateHit, 0, len(results))
	for _, r := range results {
		hit := models.CandidateHit{ID: r.ID, Score: r.Score, Snippet: r.Fragment}
		if hit.Snippet == "" {
			if c, err := components.Storage.GetCandidate(cmd.Context(), r.ID); err == nil {
				hit.Snippet = utils.Snippet(c.Text)
			}
		}
		hits = append(hits, hit)
	}
	return cli.WriteCandidateHits(cmd.OutOrStdout(), query, hits, format)
}

// statusReport mirrors GET /api/v1/status.
type statusReport struct {
	Candidates         int64            `json:"candidates"`
	Runs               int64            `json:"runs"`
	VectorIndexSize    int              `json:"vector_index_size"`
	CacheEntries       int              `json:"cache_entries"`
	RemoteEmbeddings   bool             `json:"remote_embeddings"`
	RemoteExplanations bool             `json:"remote_explanations"`
	DiskUsageBytes     map[string]int64 `json:"disk_usage_bytes,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(statusFormat)
	if err != nil {
		return err
	}
	var status *statusReport
	if statusServer != "" {
		status = &statusReport{}
		if err := newAPIClient(statusServer).get("/api/v1/status", status); err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
	} else if status, err = localStatus(cmd); err != nil {
		return err
	}
	if format == cli.OutputJSON {
		return cli.WriteJSON(cmd.OutOrStdout(), status)
	}
	writeStatusText(cmd, status)
	return nil
}

func localStatus(cmd *cobra.Command) (*statusReport, error) {
	cfg, _, logger, err := setup()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer components.Close()

	ctx := cmd.Context()
	candidates, err := components.Storage.CountCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("count candidates: %w", err)
	}
	runs, err := components.Storage.CountRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("count runs: %w", err)
	}
	embeddings, explanations := components.Screening.RemoteEnabled()
	return &statusReport{
		Candidates:         candidates,
		Runs:               runs,
		VectorIndexSize:    components.Screening.IndexSize(),
		CacheEntries:       components.Cache.Len(),
		RemoteEmbeddings:   embeddings,
		RemoteExplanations: explanations,
		DiskUsageBytes: storage.UsageByName(map[string]string{
			"database":        cfg.Storage.DatabasePath,
			"keyword_index":   cfg.Storage.BleveIndexPath,
			"vector_store":    cfg.Storage.VectorStorePath,
			"embedding_cache": cfg.Storage.EmbeddingCachePath,
		}),
	}, nil
}

func writeStatusText(cmd *cobra.Command, s *statusReport) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Candidates:          %d\n", s.Candidates)
	fmt.Fprintf(w, "Runs:                %d\n", s.Runs)
	fmt.Fprintf(w, "Vector index size:   %d\n", s.VectorIndexSize)
	fmt.Fprintf(w, "Cached embeddings:   %d\n", s.CacheEntries)
	fmt.Fprintf(w, "Remote embeddings:   %t\n", s.RemoteEmbeddings)
	fmt.Fprintf(w, "Remote explanations: %t\n", s.RemoteExplanations)
	if len(s.DiskUsageBytes) == 0 {
		return
	}
	names := make([]string, 0, len(s.DiskUsageBytes))
	for name := range s.DiskUsageBytes {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Disk usage:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, formatBytes(s.DiskUsageBytes[name]))
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
