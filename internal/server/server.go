// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package server exposes a [availability.Checker] over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/H0llyW00dzZ/availability-checker/internal/metrics"
	"github.com/H0llyW00dzZ/availability-checker/src/availability"
)

const (
	defaultMaxBatch  = 100
	defaultRateLimit = 20
	healthTimeout    = 2 * time.Second
)

// Server is the HTTP API.
type Server struct {
	Echo *echo.Echo

	checker   *availability.Checker
	metrics   *metrics.Metrics
	logger    *zap.Logger
	maxBatch  int
	rateLimit float64
	health    map[string]func(context.Context) error
}

// Option configures a [Server].
type Option func(*Server)

// WithMetrics exposes m on /metrics and records resolver health into it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBatch caps the number of domains per batch request.
func WithMaxBatch(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}

// WithRateLimit sets the per-client request rate. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(s *Server) { s.rateLimit = max(perSecond, 0) }
}

// WithHealthCheck adds a dependency probed by /healthz.
func WithHealthCheck(name string, fn func(context.Context) error) Option {
	return func(s *Server) { s.health[name] = fn }
}

// CheckRequest is the body of POST /api/v1/check.
type CheckRequest struct {
	Domain string `json:"domain"`
}

// BatchRequest is the body of POST /api/v1/batch. Either Domains or Name
// must be set; Name is expanded over TLDs, or the common TLDs when TLDs
// is empty.
type BatchRequest struct {
	Domains []string `json:"domains"`
	Name    string   `json:"name"`
	TLDs    []string `json:"tlds"`
}

// BatchResponse is the body returned by POST /api/v1/batch.
type BatchResponse struct {
	Results []availability.DomainResult `json:"results"`
	Partial bool                        `json:"partial,omitempty"`
}

// New builds the router for checker.
func New(checker *availability.Checker, opts ...Option) *Server {
	s := &Server{
		checker:   checker,
		logger:    zap.NewNop(),
		maxBatch:  defaultMaxBatch,
		rateLimit: defaultRateLimit,
		health:    make(map[string]func(context.Context) error),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
			)
			return nil
		},
	}))

	api := e.Group("/api/v1")
	if s.rateLimit > 0 {
		api.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.rateLimit))))
	}
	api.POST("/check", s.check)
	api.POST("/batch", s.batch)
	api.GET("/resolvers", s.resolvers)
	api.GET("/history", s.history)

	e.GET("/healthz", s.healthz)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	s.Echo = e
	return s
}

// Start listens on addr until [Server.Shutdown] is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

func (s *Server) check(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Domain) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "domain is required")
	}

	r, err := s.checker.CheckOne(c.Request().Context(), req.Domain)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) batch(c echo.Context) error {
	var req BatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	domains := req.Domains
	if name := strings.TrimSpace(req.Name); name != "" {
		tlds := req.TLDs
		if len(tlds) == 0 {
			tlds = nil // "tlds": [] means the common TLDs too
		}
		domains = append(domains, availability.GenerateMultiTLD(name, tlds)...)
	}

	switch {
	case len(domains) == 0:
		return echo.NewHTTPError(http.StatusBadRequest, "domains or name is required")
	case len(domains) > s.maxBatch:
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too many domains")
	}

	results, err := s.checker.Check(c.Request().Context(), domains...)
	return c.JSON(http.StatusOK, BatchResponse{Results: results, Partial: err != nil})
}

func (s *Server) resolvers(c echo.Context) error {
	statuses, err := s.checker.ResolverStatus(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	if s.metrics != nil {
		s.metrics.ObserveResolvers(statuses)
	}

	type resolverJSON struct {
		availability.ResolverStatus
		Error string `json:"error,omitempty"`
	}
	out := make([]resolverJSON, len(statuses))
	for i, st := range statuses {
		out[i] = resolverJSON{ResolverStatus: st}
		if st.Error != nil {
			out[i].Error = st.Error.Error()
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) history(c echo.Context) error {
	return c.JSON(http.StatusOK, s.checker.History().Entries())
}

func (s *Server) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.health))
	for name, fn := range s.health {
		if err := fn(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{"status": "ok", "method": s.checker.Method()}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(checks) > 0 {
		body["checks"] = checks
	}
	return c.JSON(status, body)
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		s.logger.Error("request failed", zap.Error(err))
	}

	if err := c.JSON(code, map[string]string{"error": msg}); err != nil {
		s.logger.Warn("writing error response failed", zap.Error(err))
	}
}
