package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"maitred/internal/config"
	"maitred/internal/ledger"
	"maitred/internal/logging"
	"maitred/internal/models"
	"maitred/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*HTTPServer, *service.ReservationService) {
	t.Helper()

	store, err := ledger.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.EnsureFiles())

	reservations := service.NewReservationService(ledger.NewLockRegistry(), store, nil, nil, logging.Nop())
	srv := NewHTTPServer(config.MonitoringConfig{
		Enabled:   true,
		Addr:      "127.0.0.1:0",
		RateLimit: config.RateLimitConfig{RPS: 100, Burst: 100},
	}, reservations, logging.Nop())
	return srv, reservations
}

func doRequest(srv *HTTPServer, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.1:5000"
	rec := httptest.NewRecorder()
	srv.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestAvailability(t *testing.T) {
	srv, reservations := newTestServer(t)

	outcome := reservations.MakeReservation(t.Context(), "alice", "monday", 1, 2, 12, false, "")
	require.Equal(t, models.OutcomeReservationMade, outcome)

	rec := doRequest(srv, http.MethodGet, "/api/v1/availability?day=monday&time=12")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Day       string               `json:"day"`
		Time      int                  `json:"time"`
		Available []models.TableRecord `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "monday", body.Day)
	assert.Equal(t, 12, body.Time)
	assert.Len(t, body.Available, 7)
	for _, tbl := range body.Available {
		assert.NotEqual(t, 1, tbl.TableNumber)
	}
}

func TestAvailabilityValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, doRequest(srv, http.MethodGet, "/api/v1/availability?time=12").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(srv, http.MethodGet, "/api/v1/availability?day=monday&time=noon").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(srv, http.MethodGet, "/api/v1/availability?day=funday&time=12").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(srv, http.MethodPost, "/api/v1/availability?day=monday&time=12").Code)
}

func TestOccupancy(t *testing.T) {
	srv, reservations := newTestServer(t)

	require.Equal(t, models.OutcomeReservationMade,
		reservations.MakeReservation(t.Context(), "bob", "tuesday", 4, 3, 18, false, ""))

	rec := doRequest(srv, http.MethodGet, "/api/v1/occupancy/tuesday")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Day   string `json:"day"`
		Slots []struct {
			Time   int `json:"time"`
			Booked int `json:"booked"`
			Total  int `json:"total"`
		} `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tuesday", body.Day)
	require.Len(t, body.Slots, 8)
	for _, slot := range body.Slots {
		assert.Equal(t, 8, slot.Total)
		if slot.Time == 18 {
			assert.Equal(t, 1, slot.Booked)
		} else {
			assert.Equal(t, 0, slot.Booked)
		}
	}
}

func TestOccupancyValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, doRequest(srv, http.MethodGet, "/api/v1/occupancy/").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(srv, http.MethodGet, "/api/v1/occupancy/funday").Code)
}

func TestRateLimit(t *testing.T) {
	srv, reservations := newTestServer(t)
	srv = NewHTTPServer(config.MonitoringConfig{
		Enabled:   true,
		Addr:      "127.0.0.1:0",
		RateLimit: config.RateLimitConfig{RPS: 1, Burst: 2},
	}, reservations, logging.Nop())

	assert.Equal(t, http.StatusOK, doRequest(srv, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, doRequest(srv, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(srv, http.MethodGet, "/healthz").Code)
}

func TestRateLimitPerClient(t *testing.T) {
	limiter := newRateLimiter(config.RateLimitConfig{RPS: 1, Burst: 1})
	handler := limiter.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, hit("192.0.2.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, hit("192.0.2.1:2000"))
	assert.Equal(t, http.StatusOK, hit("192.0.2.2:1000"))
}
