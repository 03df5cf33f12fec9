package validate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/trustscan/internal/metrics"
	"github.com/ppiankov/trustscan/internal/model"
	"github.com/ppiankov/trustscan/internal/util"
	"github.com/ppiankov/trustscan/internal/worker"
)

// Reachability error strings reported in LinkCheck.Error
const (
	ErrInvalidURL       = "Invalid URL format"
	ErrTimeout          = "Timeout"
	ErrConnectionFailed = "Connection failed"
)

// HTTPChecker checks citation URLs with a single HEAD request.
// Timeouts and connection failures mean "not accessible"; nothing is retried.
type HTTPChecker struct {
	httpClient *http.Client
	userAgent  string
	limiter    *worker.Limiter
	metrics    *metrics.Metrics
}

// NewHTTPChecker creates a reachability checker. limiter and m may be nil.
func NewHTTPChecker(cfg model.LinkCheckConfig, httpCfg model.HTTPConfig, limiter *worker.Limiter, m *metrics.Metrics) *HTTPChecker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	return &HTTPChecker{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent: httpCfg.UserAgent,
		limiter:   limiter,
		metrics:   m,
	}
}

// Check reports whether rawURL answers a HEAD request with a status below 400
// after following redirects
func (c *HTTPChecker) Check(ctx context.Context, rawURL string) model.LinkCheck {
	result := model.LinkCheck{URL: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		result.Error = ErrInvalidURL
		return result
	}

	start := time.Now()
	defer func() { c.metrics.ObserveLinkCheck(result.Accessible, time.Since(start)) }()

	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		result.Error = describeError(err)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		result.Error = ErrInvalidURL
		return result
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Error = describeError(err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.Accessible = resp.StatusCode < 400
	if !result.Accessible {
		result.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	if final := resp.Request.URL.String(); final != rawURL {
		result.FinalURL = final
	}

	return result
}

// describeError maps transport failures onto the reachability error strings
func describeError(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ErrTimeout
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return ErrConnectionFailed
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
