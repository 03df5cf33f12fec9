package util

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustscan/internal/model"
)

func robotsServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusOK)
			return
		}
		fetches.Add(1)
		assert.Equal(t, "trustscan/0.1 (+https://example.com)", r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &fetches
}

func robotsConfig() model.HTTPConfig {
	return model.HTTPConfig{UserAgent: "trustscan/0.1 (+https://example.com)"}
}

func TestRobotsChecker_Allowed(t *testing.T) {
	server, fetches := robotsServer(t, http.StatusOK,
		"User-agent: *\nDisallow: /\n\nUser-agent: trustscan\nDisallow: /drafts/\nAllow: /\n")
	checker := NewRobotsChecker(robotsConfig())
	ctx := context.Background()

	tests := []struct {
		path string
		want bool
	}{
		{"/articles/1", true},
		{"", true},
		{"/drafts/secret", false},
		{"/drafts/?page=2", false},
	}
	for _, tt := range tests {
		allowed, err := checker.Allowed(ctx, server.URL+tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, allowed, tt.path)
	}

	assert.Equal(t, int32(1), fetches.Load(), "rules are cached per origin")
}

func TestRobotsChecker_MissingRobotsAllowsAll(t *testing.T) {
	server, _ := robotsServer(t, http.StatusNotFound, "")
	checker := NewRobotsChecker(robotsConfig())

	allowed, err := checker.Allowed(context.Background(), server.URL+"/anything")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	checker := NewRobotsChecker(robotsConfig())

	allowed, err := checker.Allowed(context.Background(), "http://127.0.0.1:1/page")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRobotsChecker_InvalidURL(t *testing.T) {
	checker := NewRobotsChecker(robotsConfig())

	_, err := checker.Allowed(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Equal(t, "trustscan", NormalizeUserAgent("trustscan/0.1 (+https://example.com)"))
	assert.Equal(t, "bot", NormalizeUserAgent("bot"))
	assert.Equal(t, "*", NormalizeUserAgent(""))
}
