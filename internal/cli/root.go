package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trustscan/internal/llm"
	"github.com/ppiankov/trustscan/internal/logging"
	"github.com/ppiankov/trustscan/internal/metrics"
	"github.com/ppiankov/trustscan/internal/model"
	"github.com/ppiankov/trustscan/internal/pipeline"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trustscan",
	Short: "trustscan - verification of AI-generated text",
	Long: `trustscan inspects AI-generated text for signs of fabrication.

It extracts citations and checks that their links resolve and their
years are plausible, scores each sentence for hallucination risk, and
aggregates everything into a transparent trust score.

A semantic judgment provider (OpenAI, Anthropic, Ollama or a model
server) sharpens the analysis when configured. Without one, trustscan
runs in fallback mode on rules alone.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "trustscan %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.trustscan/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("provider", "", "semantic provider (openai, anthropic, ollama, modelserver)")
	rootCmd.PersistentFlags().String("model", "", "semantic provider model name")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (console, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("semantic.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("semantic.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".trustscan"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	configureViper(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureViper registers the defaults and environment binding.
// TRUSTSCAN_LINK_CHECK_TIMEOUT maps to link_check.timeout.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix("TRUSTSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, "", defaultsMap())
	_ = v.BindEnv("semantic.api_key")
}

// defaultsMap returns the built-in defaults keyed like the config file
func defaultsMap() map[string]any {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func setDefaults(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			setDefaults(v, key, nested)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig builds the effective configuration from v. Defaults come
// from v, so configureViper must have been applied.
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Provider-specific environment fallbacks
	if cfg.Semantic.APIKey == "" {
		switch strings.ToLower(cfg.Semantic.Provider) {
		case "openai":
			cfg.Semantic.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.Semantic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if strings.EqualFold(cfg.Semantic.Provider, "ollama") && cfg.Semantic.BaseURL == "" {
		cfg.Semantic.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	return cfg, nil
}

// app holds the process-wide components shared by the commands
type app struct {
	cfg      *model.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	pipeline *pipeline.Pipeline
}

// newApp loads configuration and builds the pipeline. The semantic
// provider is probed once here; an unreachable provider is not an error.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	m := metrics.New()

	models, err := llm.LoadModels(ctx, llm.ConfigFromModel(cfg.Semantic, cfg.HTTP), logger, m)
	if err != nil {
		return nil, fmt.Errorf("init semantic provider: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		pipeline: pipeline.NewPipeline(cfg, models, logger, m),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
