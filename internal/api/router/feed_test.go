package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filingradar/filingradar/internal/apperr"
	"github.com/filingradar/filingradar/internal/domain"
	"github.com/filingradar/filingradar/internal/live"
)

type stubFeed struct {
	records     []domain.Announcement
	status      live.Status
	reconnected int
}

func (f *stubFeed) Snapshot() []domain.Announcement { return f.records }
func (f *stubFeed) Status() live.Status             { return f.status }
func (f *stubFeed) Reconnect()                      { f.reconnected++ }

type stubSearcher struct {
	companies []domain.Company
}

func (s *stubSearcher) SearchCompanies(ctx context.Context, query string, limit int) ([]domain.Company, error) {
	return s.companies, nil
}

func newTestRouter(feed *stubFeed, opts ...Option) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewFeedRouter(e, feed, opts...).Bind()
	return e
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnnouncementsHandler(t *testing.T) {
	feed := &stubFeed{records: []domain.Announcement{
		{IdentityKey: "a", Company: "Acme"},
		{IdentityKey: "b", Company: "Beta"},
		{IdentityKey: "c", Company: "Gamma"},
	}}
	e := newTestRouter(feed)

	rec := doRequest(e, http.MethodGet, "/api/announcements?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Announcements []domain.Announcement `json:"announcements"`
		Count         int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "a", body.Announcements[0].IdentityKey)
}

func TestAnnouncementsHandler_InvalidLimit(t *testing.T) {
	e := newTestRouter(&stubFeed{})

	rec := doRequest(e, http.MethodGet, "/api/announcements?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLiveStatusHandler(t *testing.T) {
	feed := &stubFeed{status: live.Status{State: live.StateError, LastError: "dial refused"}}
	e := newTestRouter(feed)

	rec := doRequest(e, http.MethodGet, "/api/live/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status live.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, live.StateError, status.State)
	assert.Equal(t, "dial refused", status.LastError)
}

func TestReconnectHandler(t *testing.T) {
	feed := &stubFeed{}
	e := newTestRouter(feed)

	rec := doRequest(e, http.MethodPost, "/api/live/reconnect")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, feed.reconnected)
}

func TestCompanySearchHandler(t *testing.T) {
	searcher := &stubSearcher{companies: []domain.Company{{Name: "Acme Ltd", Ticker: "ACME"}}}
	e := newTestRouter(&stubFeed{}, WithCompanySearcher(searcher))

	rec := doRequest(e, http.MethodGet, "/api/company/search?q=acme")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Companies []domain.Company `json:"companies"`
		Count     int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "ACME", body.Companies[0].Ticker)
}

func TestCompanySearchHandler_MissingQuery(t *testing.T) {
	e := newTestRouter(&stubFeed{})

	rec := doRequest(e, http.MethodGet, "/api/company/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanySearchHandler_NotConfigured(t *testing.T) {
	e := newTestRouter(&stubFeed{})

	rec := doRequest(e, http.MethodGet, "/api/company/search?q=acme")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	e := newTestRouter(&stubFeed{})

	rec := doRequest(e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}
