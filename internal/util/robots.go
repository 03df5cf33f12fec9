package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/ppiankov/trustscan/internal/model"
)

// RobotsChecker answers whether a batch source may be fetched under the
// site's robots.txt. Rules are cached per scheme and host.
type RobotsChecker struct {
	client *http.Client
	agent  string
	header string

	mu    sync.RWMutex
	rules map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a checker that identifies itself with
// cfg.UserAgent and reaches robots.txt through the configured proxies
func NewRobotsChecker(cfg model.HTTPConfig) *RobotsChecker {
	timeout := cfg.Timeout
	if timeout <= 0 || timeout > 10*time.Second {
		timeout = 10 * time.Second
	}

	return &RobotsChecker{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		agent:  NormalizeUserAgent(cfg.UserAgent),
		header: cfg.UserAgent,
		rules:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether rawURL may be fetched. A robots.txt that cannot
// be retrieved allows everything; a malformed URL is an error.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false, fmt.Errorf("invalid URL %q", rawURL)
	}

	data := r.rulesFor(ctx, parsed.Scheme+"://"+parsed.Host)
	if data == nil {
		return true, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return data.TestAgent(path, r.agent), nil
}

func (r *RobotsChecker) rulesFor(ctx context.Context, origin string) *robotstxt.RobotsData {
	r.mu.RLock()
	data, ok := r.rules[origin]
	r.mu.RUnlock()
	if ok {
		return data
	}

	data, err := r.fetch(ctx, origin+"/robots.txt")
	if err != nil {
		// transient failures are not cached
		return nil
	}

	r.mu.Lock()
	r.rules[origin] = data
	r.mu.Unlock()
	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	if r.header != "" {
		req.Header.Set("User-Agent", r.header)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all
	return robotstxt.FromResponse(resp)
}

// NormalizeUserAgent returns the product token of a User-Agent header,
// e.g. "trustscan" for "trustscan/0.1 (+https://...)"
func NormalizeUserAgent(ua string) string {
	fields := strings.Fields(ua)
	if len(fields) == 0 {
		return "*"
	}
	return strings.SplitN(fields[0], "/", 2)[0]
}
