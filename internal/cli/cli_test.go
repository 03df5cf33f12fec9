package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/trustscan/internal/model"
	"github.com/ppiankov/trustscan/internal/pipeline"
	"github.com/ppiankov/trustscan/internal/worker"
)

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	configureViper(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TRUSTSCAN_PIPELINE_MAX_CLAIMS", "5")
	t.Setenv("TRUSTSCAN_LINK_CHECK_TIMEOUT", "2s")
	t.Setenv("TRUSTSCAN_SEMANTIC_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	v := viper.New()
	configureViper(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Pipeline.MaxClaims)
	assert.Equal(t, 2*time.Second, cfg.LinkCheck.Timeout)
	assert.Equal(t, "sk-test", cfg.Semantic.APIKey)
	assert.Equal(t, 8, cfg.Pipeline.Workers, "untouched defaults survive")
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
}

func TestLoadConfig_ExplicitKeyWins(t *testing.T) {
	t.Setenv("TRUSTSCAN_SEMANTIC_API_KEY", "sk-explicit")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-fallback")

	v := viper.New()
	configureViper(v)
	v.Set("semantic.provider", "anthropic")

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "sk-explicit", cfg.Semantic.APIKey)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  min_claim_length: 30
semantic:
  provider: ollama
  model: mistral
log:
  format: json
`), 0o644))
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	v := viper.New()
	configureViper(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Pipeline.MinClaimLength)
	assert.Equal(t, "mistral", cfg.Semantic.Model)
	assert.Equal(t, "http://gpu-box:11434", cfg.Semantic.BaseURL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".trustscan", "config.yaml")

	require.NoError(t, writeDefaultConfig(path))

	v := viper.New()
	configureViper(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Pipeline, cfg.Pipeline)

	assert.Error(t, writeDefaultConfig(path), "existing file is not overwritten")
}

func TestShowConfig_HidesAPIKey(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Semantic.APIKey = "sk-secret"

	var buf bytes.Buffer
	require.NoError(t, showConfig(&buf, cfg))

	assert.NotContains(t, buf.String(), "sk-secret")
	assert.Contains(t, buf.String(), "Semantic API key: set")
	assert.Contains(t, buf.String(), "min_claim_length: 20")
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"docs/answer one.txt":             "answer-one",
		"https://example.com/a/b?x=1":     "https_example.com_a_b_x=1",
		"/tmp/report.html":                "report",
		"...":                             "report",
		strings.Repeat("a", 150) + ".txt": strings.Repeat("a", 100),
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func TestWriteBatchReports(t *testing.T) {
	dir := t.TempDir()
	report := &model.Report{ID: "r", TrustScore: 0.9}
	results := []*worker.BatchResult{
		{Source: "a/essay.txt", Report: report},
		{Source: "b/essay.txt", Report: report},
		{Source: "missing.txt", Error: os.ErrNotExist},
	}

	success, failure := writeBatchReports(results, dir)

	assert.Equal(t, 2, success)
	assert.Equal(t, 1, failure)
	assert.FileExists(t, filepath.Join(dir, "essay.json"))
	assert.FileExists(t, filepath.Join(dir, "essay-2.json"))
}

func TestReadInput(t *testing.T) {
	p := pipeline.New(model.DefaultConfig().Pipeline, nil, nil, nil, nil, nil)
	ctx := context.Background()

	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(htmlPath, []byte("<p>Hello <script>x</script>world</p>"), 0o644))

	got, err := readInput(ctx, p, strings.NewReader("from stdin"), nil)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readInput(ctx, p, strings.NewReader("from stdin"), []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = readInput(ctx, p, nil, []string{htmlPath})
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got)

	_, err = readInput(ctx, p, nil, []string{filepath.Join(dir, "nope.txt")})
	assert.Error(t, err)
}
