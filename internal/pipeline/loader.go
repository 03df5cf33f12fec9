package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/trustscan/internal/extract"
	"github.com/ppiankov/trustscan/internal/util"
)

// ErrRobotsDisallowed is returned for remote sources excluded by robots.txt
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// SourceLoader loads batch sources: http(s) URLs are fetched, anything
// else is read as a local file. Files ending in .html or .htm are reduced
// to their visible text.
type SourceLoader struct {
	fetcher *Fetcher
	robots  *util.RobotsChecker
}

// NewSourceLoader creates a loader that fetches URLs with fetcher. When
// robots is non-nil, remote sources are checked against robots.txt first.
func NewSourceLoader(fetcher *Fetcher, robots *util.RobotsChecker) *SourceLoader {
	return &SourceLoader{fetcher: fetcher, robots: robots}
}

// Loader returns a batch source loader sharing the pipeline's fetcher
func (p *Pipeline) Loader() *SourceLoader {
	return NewSourceLoader(p.fetcher, p.robots)
}

// FetchText fetches a remote document for verification
func (p *Pipeline) FetchText(ctx context.Context, rawURL string) (string, error) {
	return p.fetcher.FetchText(ctx, rawURL)
}

// Load returns the text content of source
func (l *SourceLoader) Load(ctx context.Context, source string) (string, error) {
	if IsRemote(source) {
		if l.robots != nil {
			allowed, err := l.robots.Allowed(ctx, source)
			if err != nil {
				return "", err
			}
			if !allowed {
				return "", fmt.Errorf("%s: %w", source, ErrRobotsDisallowed)
			}
		}
		return l.fetcher.FetchText(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", source, err)
	}

	switch strings.ToLower(filepath.Ext(source)) {
	case ".html", ".htm":
		return extract.VisibleText(string(data))
	default:
		return string(data), nil
	}
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
