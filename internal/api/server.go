// Package api exposes the classifier, duty resolver and search over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/hts-classify/internal/common"
	"github.com/Veraticus/hts-classify/internal/engine"
	"github.com/Veraticus/hts-classify/internal/metrics"
	"github.com/Veraticus/hts-classify/internal/model"
	"github.com/Veraticus/hts-classify/internal/tariff"
	"github.com/gin-gonic/gin"
)

// Classifier runs and clears persisted classification sessions.
type Classifier interface {
	Handle(ctx context.Context, id, message string) (model.Response, error)
	Clear(ctx context.Context, id string) error
}

// Oracle modes reported by the health endpoint.
const (
	OracleModeFallback = "fallback"
	OracleModeModel    = "model"
)

// Server holds the handlers' collaborators.
type Server struct {
	classifier Classifier
	resolver   *tariff.Resolver
	searcher   engine.Searcher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	oracleMode string
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics and serves them on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithOracleMode sets the oracle mode reported by /api/health.
func WithOracleMode(mode string) Option {
	return func(s *Server) { s.oracleMode = mode }
}

// New creates a Server.
func New(classifier Classifier, resolver *tariff.Resolver, searcher engine.Searcher, opts ...Option) *Server {
	s := &Server{
		classifier: classifier,
		resolver:   resolver,
		searcher:   searcher,
		logger:     slog.Default(),
		oracleMode: OracleModeFallback,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.observe())

	api := router.Group("/api")
	{
		api.POST("/classify", s.classify)
		api.POST("/session/clear", s.clearSession)
		api.GET("/duty/:code", s.duty)
		api.GET("/search", s.search)
		api.GET("/health", s.health)
	}
	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return router
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		if s.metrics != nil {
			s.metrics.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), elapsed)
		}
		s.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"elapsed", elapsed)
	}
}

type classifyRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type classifyResponse struct {
	SessionID string `json:"session_id"`
	model.Response
}

func (s *Server) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
		return
	}

	resp, err := s.classifier.Handle(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := classifyResponse{Response: resp}
	if resp.Session != nil {
		out.SessionID = resp.Session.ID
	}
	c.JSON(http.StatusOK, out)
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) clearSession(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
		return
	}
	if err := s.classifier.Clear(c.Request.Context(), req.SessionID); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": req.SessionID, "cleared": true})
}

func (s *Server) duty(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	details, err := s.resolver.Details(code)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if main := strings.TrimSpace(c.Query("main")); main != "" {
		details.Duty, err = s.resolver.ResolveForMainArticle(code, main)
		if err != nil {
			s.writeError(c, err)
			return
		}
	}

	if s.metrics != nil {
		s.metrics.ObserveResolution(details.Duty.Source)
	}
	c.JSON(http.StatusOK, details)
}

func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		s.writeError(c, fmt.Errorf("%w: query parameter q is required", common.ErrInvalidInput))
		return
	}

	results, err := s.searcher.Search(c.Request.Context(), query)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if raw := c.Query("limit"); raw != "" {
		limit, convErr := strconv.Atoi(raw)
		if convErr != nil || limit < 1 {
			s.writeError(c, fmt.Errorf("%w: limit must be a positive integer", common.ErrInvalidInput))
			return
		}
		if limit < len(results) {
			results = results[:limit]
		}
	}

	if results == nil {
		results = []model.MatchCandidate{}
	}
	c.JSON(http.StatusOK, gin.H{"query": query, "count": len(results), "results": results})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"entries": s.resolver.Index().Len(),
		"oracle":  s.oracleMode,
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
