package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/hydernasirr/aws-finops-2/internal/application/usecase"
	"github.com/hydernasirr/aws-finops-2/internal/shared/types"
)

// Server exposes the engine's read-only operations over HTTP. It does no
// cost logic of its own: parse the request, call the use case, serialize
// the result.
type Server struct {
	echo        *echo.Echo
	reports     *usecase.ReportUseCase
	defaultDays int
	logger      *zap.Logger
}

// NewServer wires the routes onto a fresh echo instance.
func NewServer(reports *usecase.ReportUseCase, defaultDays int, logger *zap.Logger) *Server {
	if defaultDays <= 0 {
		defaultDays = types.DefaultConfig().DaysBack
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{echo: e, reports: reports, defaultDays: defaultDays, logger: logger}

	e.GET("/api/health", s.handleHealth)
	e.GET("/api/costs/summary", s.handleSummary)
	e.GET("/api/costs/by-service", s.handleCostsByService)
	e.GET("/api/costs/daily", s.handleDailyCosts)
	e.GET("/api/forecast", s.handleForecast)
	e.GET("/api/optimization/unused-resources", s.handleUnusedResources)
	e.GET("/api/optimization/recommendations", s.handleRecommendations)

	return s
}

// Start blocks serving HTTP until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(addr)
	}()

	select {
	case <-ctx.Done():
		return s.echo.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler exposes the underlying http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "healthy"})
}

func (s *Server) handleSummary(c echo.Context) error {
	days, err := s.daysParam(c)
	if err != nil {
		return err
	}
	summary, err := s.reports.GetSummary(c.Request().Context(), days)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

func (s *Server) handleCostsByService(c echo.Context) error {
	days, err := s.daysParam(c)
	if err != nil {
		return err
	}
	breakdown, err := s.reports.GetCostBreakdown(c.Request().Context(), days)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"services": breakdown.Entries,
		"total":    breakdown.Total,
	})
}

func (s *Server) handleDailyCosts(c echo.Context) error {
	days, err := s.daysParam(c)
	if err != nil {
		return err
	}
	daily, err := s.reports.GetDailyCosts(c.Request().Context(), days)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"daily_costs": daily})
}

func (s *Server) handleForecast(c echo.Context) error {
	days, err := s.daysParam(c)
	if err != nil {
		return err
	}
	forecast, err := s.reports.GetForecast(c.Request().Context(), days)
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, forecast)
}

func (s *Server) handleUnusedResources(c echo.Context) error {
	findings, unavailable, err := s.reports.GetFindings(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"findings":             findings,
		"count":                len(findings),
		"unavailable_sections": unavailable,
	})
}

func (s *Server) handleRecommendations(c echo.Context) error {
	recommendations, unavailable, err := s.reports.GetRecommendations(c.Request().Context())
	if err != nil {
		return s.errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"recommendations":      recommendations,
		"count":                len(recommendations),
		"unavailable_sections": unavailable,
	})
}

func (s *Server) daysParam(c echo.Context) (int, error) {
	raw := c.QueryParam("days")
	if raw == "" {
		return s.defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "days must be a positive integer")
	}
	return days, nil
}

// errorResponse maps the engine's error taxonomy onto HTTP statuses, so
// clients can tell credential problems from transient faults.
func (s *Server) errorResponse(c echo.Context, err error) error {
	kind := types.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case types.KindUnauthenticated:
		status = http.StatusUnauthorized
	case types.KindUnauthorized:
		status = http.StatusForbidden
	case types.KindInvalidWindow:
		status = http.StatusBadRequest
	case types.KindUpstreamUnavailable:
		status = http.StatusServiceUnavailable
	case types.KindInsufficientHistory:
		status = http.StatusUnprocessableEntity
	case types.KindPartialData:
		status = http.StatusServiceUnavailable
	}

	s.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.String("kind", kind.String()),
		zap.Error(err))

	return c.JSON(status, map[string]any{
		"error":   kind.String(),
		"message": err.Error(),
	})
}
