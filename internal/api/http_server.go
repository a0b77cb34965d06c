package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"maitred/internal/config"
	"maitred/internal/models"
	"maitred/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HTTPServer exposes a read-only monitoring surface next to the wire
// protocol: health, prometheus metrics and an availability view. It never
// mutates the ledgers.
type HTTPServer struct {
	cfg          config.MonitoringConfig
	reservations *service.ReservationService
	server       *http.Server
	logger       zerolog.Logger
}

func NewHTTPServer(cfg config.MonitoringConfig, reservations *service.ReservationService, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		reservations: reservations,
		logger:       logger.With().Str("component", "monitoring-api").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/availability", srv.handleAvailability)
	mux.HandleFunc("/api/v1/occupancy/", srv.handleOccupancy)

	limiter := newRateLimiter(cfg.RateLimit)
	srv.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           limiter.Wrap(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("monitoring API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	day := strings.TrimSpace(r.URL.Query().Get("day"))
	if day == "" {
		writeError(w, http.StatusBadRequest, "day is required")
		return
	}

	timeStr := strings.TrimSpace(r.URL.Query().Get("time"))
	timeSlot, err := strconv.Atoi(timeStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "time must be an integer hour")
		return
	}

	records, err := s.reservations.ListAvailable(r.Context(), day, timeSlot)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDay) {
			writeError(w, http.StatusNotFound, "unknown day")
			return
		}
		s.logger.Error().Err(err).Str("day", day).Msg("availability lookup failed")
		writeError(w, http.StatusInternalServerError, "availability lookup failed")
		return
	}

	if records == nil {
		records = []models.TableRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"day":       day,
		"time":      timeSlot,
		"available": records,
	})
}

func (s *HTTPServer) handleOccupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/occupancy/"
	day := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
	if day == "" || strings.Contains(day, "/") {
		writeError(w, http.StatusBadRequest, "day is required")
		return
	}

	counts, err := s.reservations.Occupancy(r.Context(), day)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDay) {
			writeError(w, http.StatusNotFound, "unknown day")
			return
		}
		s.logger.Error().Err(err).Str("day", day).Msg("occupancy lookup failed")
		writeError(w, http.StatusInternalServerError, "occupancy lookup failed")
		return
	}

	type slotOccupancy struct {
		Time   int `json:"time"`
		Booked int `json:"booked"`
		Total  int `json:"total"`
	}
	slots := make([]slotOccupancy, 0, len(counts))
	for _, slot := range append(models.DefaultSlots(), models.LateSlot) {
		if c, ok := counts[slot]; ok {
			slots = append(slots, slotOccupancy{Time: slot, Booked: c[0], Total: c[1]})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"day": day, "slots": slots})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
