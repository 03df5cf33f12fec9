package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustscan/internal/model"
	"github.com/ppiankov/trustscan/internal/pipeline"
	"github.com/ppiankov/trustscan/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	listFile     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [source...]",
	Short: "Verify many documents in parallel",
	Long: `Batch verifies documents concurrently:
- Sources are local files or http(s) URLs
- Sources can also be listed in a file (one per line, # for comments)
- Each document gets its own JSON report in the output directory

Example:
  trustscan batch answers/*.txt
  trustscan batch --list sources.txt --concurrency 10 --output-dir ./reports`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent documents")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./trustscan-reports", "output directory for reports")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file listing sources, one per line")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "skip semantic judgment even when a provider is configured")
}

func runBatch(cmd *cobra.Command, args []string) error {
	sources := args
	if listFile != "" {
		listed, err := worker.ReadSourcesFromFile(listFile)
		if err != nil {
			return fmt.Errorf("read source list: %w", err)
		}
		sources = append(sources, listed...)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources given (pass files or URLs, or --list)")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  trustscan Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Sources:      %d\n", len(sources))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(a.pipeline, a.pipeline.Loader(), concurrency)

	options := model.NewRequest("")
	options.UseSemanticJudgment = !noSemantic

	fmt.Fprintf(os.Stderr, "⚙️  Verifying with %d workers...\n\n", concurrency)
	results := processor.ProcessSources(ctx, sources, options)

	successCount, failureCount := writeBatchReports(results, outputDir)

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d documents failed", failureCount)
	}
	return nil
}

// writeBatchReports writes one JSON report per successful result
func writeBatchReports(results []*worker.BatchResult, dir string) (success, failure int) {
	renderer := pipeline.NewRenderer()
	used := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		name := sanitizeFilename(result.Source)
		if n := used[name]; n > 0 {
			name = fmt.Sprintf("%s-%d", name, n+1)
		}
		used[name]++

		jsonPath := filepath.Join(dir, name+".json")
		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failure++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Source, err)
			continue
		}

		success++
		fmt.Fprintf(os.Stderr, "✓ %s (trust: %.2f)\n", result.Source, result.Report.TrustScore)
	}
	return success, failure
}

var filenameReplacer = strings.NewReplacer(
	"://", "_",
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename derives a report file name from a source
func sanitizeFilename(source string) string {
	s := source
	if !pipeline.IsRemote(s) {
		s = strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
	}
	s = strings.Trim(filenameReplacer.Replace(s), "._-")

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}
