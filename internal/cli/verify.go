package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustscan/internal/extract"
	"github.com/ppiankov/trustscan/internal/model"
	"github.com/ppiankov/trustscan/internal/pipeline"
)

var (
	outJSON       string
	pageURL       string
	htmlInput     bool
	noCitations   bool
	noClaims      bool
	noSemantic    bool
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify a document and produce a trust report",
	Long: `Verify analyzes one document to:
- Extract APA-style, bracketed and bare-URL citations
- Check that cited URLs resolve and cited years are plausible
- Score each sentence for hallucination risk
- Aggregate a transparent trust score

The document is read from the file argument, from stdin when the
argument is "-" or absent, or fetched with --url.

Example:
  trustscan verify answer.txt
  cat answer.txt | trustscan verify --json report.json
  trustscan verify page.html --html
  trustscan verify --url https://example.com/article --provider openai`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "-", `output JSON path ("-" for stdout)`)

	// Input flags
	verifyCmd.Flags().StringVar(&pageURL, "url", "", "fetch the document from this URL")
	verifyCmd.Flags().BoolVar(&htmlInput, "html", false, "treat the input as HTML and verify its visible text")

	// Check flags
	verifyCmd.Flags().BoolVar(&noCitations, "no-citations", false, "skip citation checks")
	verifyCmd.Flags().BoolVar(&noClaims, "no-claims", false, "skip claim analysis")
	verifyCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "skip semantic judgment even when a provider is configured")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	content, err := readInput(ctx, a.pipeline, cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	req := model.Request{
		Content:             content,
		CheckCitations:      !noCitations,
		CheckClaims:         !noClaims,
		UseSemanticJudgment: !noSemantic,
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Verifying %d characters...\n", len([]rune(content)))
	}

	report, err := a.pipeline.Verify(ctx, req)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	renderer := pipeline.NewRendererTo(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err := renderer.RenderJSON(report, outJSON); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if outJSON != "-" && outJSON != "" && verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
	}
	renderer.RenderSummary(report)

	return nil
}

// readInput returns the document text from --url, a file or stdin
func readInput(ctx context.Context, p *pipeline.Pipeline, stdin io.Reader, args []string) (string, error) {
	if pageURL != "" {
		text, err := p.FetchText(ctx, pageURL)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", pageURL, err)
		}
		return text, nil
	}

	var (
		data []byte
		err  error
		html = htmlInput
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
		ext := strings.ToLower(filepath.Ext(args[0]))
		html = html || ext == ".html" || ext == ".htm"
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}

	if !html {
		return string(data), nil
	}
	text, err := extract.VisibleText(string(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	return text, nil
}
