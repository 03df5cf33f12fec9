package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/trustscan/internal/model"
)

// verifyRequest mirrors model.Request with every check defaulting to on.
// content must be present but may be empty.
type verifyRequest struct {
	Content             *string `json:"content" binding:"required"`
	CheckCitations      *bool   `json:"check_citations"`
	CheckClaims         *bool   `json:"check_claims"`
	UseSemanticJudgment *bool   `json:"use_semantic_judgment"`
}

func (r verifyRequest) toModel() model.Request {
	req := model.NewRequest(*r.Content)
	req.CheckCitations = boolOr(r.CheckCitations, true)
	req.CheckClaims = boolOr(r.CheckClaims, true)
	req.UseSemanticJudgment = boolOr(r.UseSemanticJudgment, true)
	return req
}

type verifyURLRequest struct {
	URL string `json:"url" binding:"required"`
}

type analyzeClaimRequest struct {
	Claim               string `json:"claim" binding:"required"`
	UseSemanticJudgment *bool  `json:"use_semantic_judgment"`
}

func boolOr(b *bool, fallback bool) bool {
	if b == nil {
		return fallback
	}
	return *b
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "trustscan AI-text verification service",
		"version": s.version,
		"status":  "operational",
		"endpoints": gin.H{
			"verify":        "/api/verify",
			"verify_url":    "/api/verify-url",
			"analyze_claim": "/api/analyze-claim",
			"health":        "/health",
			"models_info":   "/api/models",
			"metrics":       "/metrics",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	info := s.service.Models().Info()
	c.JSON(http.StatusOK, gin.H{
		"status":             "healthy",
		"models_loaded":      info.Loaded,
		"models_operational": info.Operations,
	})
}

func (s *Server) models(c *gin.Context) {
	c.JSON(http.StatusOK, s.service.Models().Info())
}

func (s *Server) verify(c *gin.Context) {
	var body verifyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.service.Verify(c.Request.Context(), body.toModel())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusServiceUnavailable
		}
		s.logger.Warn("verification failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) verifyURL(c *gin.Context) {
	var body verifyURLRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.service.CheckURL(c.Request.Context(), body.URL))
}

func (s *Server) analyzeClaim(c *gin.Context) {
	var body analyzeClaimRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.service.AnalyzeClaim(c.Request.Context(), body.Claim, boolOr(body.UseSemanticJudgment, true)))
}
