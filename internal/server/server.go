package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/trustscan/internal/llm"
	"github.com/ppiankov/trustscan/internal/metrics"
	"github.com/ppiankov/trustscan/internal/model"
)

const shutdownTimeout = 10 * time.Second

// Service is the verification surface exposed over HTTP
type Service interface {
	Verify(ctx context.Context, req model.Request) (*model.Report, error)
	CheckURL(ctx context.Context, rawURL string) model.LinkCheck
	AnalyzeClaim(ctx context.Context, text string, useSemantic bool) model.ClaimResult
	Models() *llm.Models
}

// Server is the HTTP shell around the verification pipeline
type Server struct {
	router  *gin.Engine
	service Service
	metrics *metrics.Metrics
	logger  *zap.Logger
	config  model.ServerConfig
	version string
}

// New creates a server with every route registered
func New(cfg model.ServerConfig, service Service, m *metrics.Metrics, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(CORS(cfg.AllowedOrigins))

	s := &Server{
		router:  r,
		service: service,
		metrics: m,
		logger:  logger,
		config:  cfg,
		version: version,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.root)
	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api")
	api.GET("/models", s.models)
	api.POST("/verify", s.verify)
	api.POST("/verify-url", s.verifyURL)
	api.POST("/analyze-claim", s.analyzeClaim)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.config.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
