package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/trustscan/internal/model"
)

// Verifier verifies a single document
type Verifier interface {
	Verify(ctx context.Context, req model.Request) (*model.Report, error)
}

// Loader resolves a batch source (a file path or an http(s) URL) to document text
type Loader interface {
	Load(ctx context.Context, source string) (string, error)
}

// BatchResult is the outcome of verifying one source
type BatchResult struct {
	Source string
	Report *model.Report
	Error  error
}

// verifyJob loads and verifies one source
type verifyJob struct {
	source   string
	options  model.Request
	loader   Loader
	verifier Verifier
}

func (j *verifyJob) Execute(ctx context.Context) *BatchResult {
	if err := ctx.Err(); err != nil {
		return &BatchResult{Source: j.source, Error: err}
	}

	content, err := j.loader.Load(ctx, j.source)
	if err != nil {
		return &BatchResult{Source: j.source, Error: fmt.Errorf("load: %w", err)}
	}

	req := j.options
	req.Content = content

	report, err := j.verifier.Verify(ctx, req)
	if err != nil {
		return &BatchResult{Source: j.source, Error: err}
	}
	return &BatchResult{Source: j.source, Report: report}
}

// BatchProcessor verifies many documents concurrently
type BatchProcessor struct {
	verifier    Verifier
	loader      Loader
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, loader Loader, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		loader:      loader,
		concurrency: concurrency,
	}
}

// ProcessSources verifies every source with the check selection in options.
// Results are returned in input order; options.Content is ignored.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string, options model.Request) []*BatchResult {
	if len(sources) == 0 {
		return []*BatchResult{}
	}

	pool := NewPool[*BatchResult](ctx, b.concurrency)
	pool.Start()

	for _, source := range sources {
		pool.Submit(&verifyJob{
			source:   source,
			options:  options,
			loader:   b.loader,
			verifier: b.verifier,
		})
	}

	results := pool.Wait()

	// Sources skipped by cancellation still get a result
	out := make([]*BatchResult, len(sources))
	for i, source := range sources {
		if i < len(results) && results[i] != nil {
			out[i] = results[i]
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("not processed")
		}
		out[i] = &BatchResult{Source: source, Error: err}
	}

	return out
}

// ProcessFile reads a source list and verifies every entry
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string, options model.Request) ([]*BatchResult, error) {
	sources, err := ReadSourcesFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources, options), nil
}

// ReadSourcesFromFile reads one source per line, skipping blanks, #-comments
// and duplicates
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
