package router

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/filingradar/filingradar/internal/apperr"
	"github.com/filingradar/filingradar/internal/domain"
	"github.com/filingradar/filingradar/internal/live"
	"github.com/filingradar/filingradar/pkg/server"
)

const defaultAnnouncementLimit = 50

// Feed is the view of the live coordinator the API exposes.
type Feed interface {
	Snapshot() []domain.Announcement
	Status() live.Status
	Reconnect()
}

type CompanySearcher interface {
	SearchCompanies(ctx context.Context, query string, limit int) ([]domain.Company, error)
}

type FeedRouter struct {
	e         *echo.Echo
	feed      Feed
	health    server.HealthChecker
	companies CompanySearcher
}

type Option func(*FeedRouter)

// WithCompanySearcher enables the company search endpoint. Without it the
// endpoint answers 503.
func WithCompanySearcher(searcher CompanySearcher) Option {
	return func(r *FeedRouter) {
		r.companies = searcher
	}
}

func WithHealthChecker(hc server.HealthChecker) Option {
	return func(r *FeedRouter) {
		r.health = hc
	}
}

func NewFeedRouter(e *echo.Echo, feed Feed, opts ...Option) *FeedRouter {
	r := &FeedRouter{
		e:      e,
		feed:   feed,
		health: server.NewOkHealthChecker(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FeedRouter) Bind() {
	r.e.GET("/health", r.healthHandler)
	r.e.GET("/api/announcements", r.announcementsHandler)
	r.e.GET("/api/live/status", r.liveStatusHandler)
	r.e.POST("/api/live/reconnect", r.reconnectHandler)
	r.e.GET("/api/company/search", r.companySearchHandler)
}

func (r *FeedRouter) healthHandler(c echo.Context) error {
	if !r.health.Healthy(c.Request().Context()) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (r *FeedRouter) announcementsHandler(c echo.Context) error {
	limit := defaultAnnouncementLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return apperr.NewValidation("limit must be a positive number")
		}
		limit = parsed
	}

	announcements := r.feed.Snapshot()
	if len(announcements) > limit {
		announcements = announcements[:limit]
	}

	return c.JSON(http.StatusOK, map[string]any{
		"announcements": announcements,
		"count":         len(announcements),
	})
}

func (r *FeedRouter) liveStatusHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, r.feed.Status())
}

func (r *FeedRouter) reconnectHandler(c echo.Context) error {
	r.feed.Reconnect()
	return c.JSON(http.StatusAccepted, map[string]string{"status": "reconnect requested"})
}

func (r *FeedRouter) companySearchHandler(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return apperr.NewValidation("q parameter is required")
	}
	if r.companies == nil {
		return apperr.NewUnavailable("company search is not configured")
	}

	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return apperr.NewValidation("limit must be a positive number")
		}
		limit = parsed
	}

	companies, err := r.companies.SearchCompanies(c.Request().Context(), query, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"companies": companies,
		"count":     len(companies),
	})
}
