package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/trustscan/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP service",
	Long: `Serve exposes verification over HTTP:

  GET  /                    service info
  GET  /health              status and available semantic capabilities
  GET  /api/models          semantic provider details
  POST /api/verify          verify a document
  POST /api/verify-url      check a single URL
  POST /api/analyze-claim   analyze a single sentence
  GET  /metrics             Prometheus metrics

Example:
  trustscan serve --addr :8000
  TRUSTSCAN_SEMANTIC_PROVIDER=modelserver TRUSTSCAN_SEMANTIC_BASE_URL=http://localhost:8001 trustscan serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(a.cfg.Server, a.pipeline, a.metrics, a.logger, Version)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
