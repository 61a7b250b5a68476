package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/snorochevskiy/photo-sync-tst/pkg/catalog"
	"github.com/snorochevskiy/photo-sync-tst/pkg/log"
	"github.com/snorochevskiy/photo-sync-tst/pkg/metrics"
	"github.com/snorochevskiy/photo-sync-tst/pkg/types"
)

// Server exposes the local catalog to remote peers over HTTP/JSON. The
// surface mirrors the peer capability one query per endpoint, plus health
// and metrics endpoints for operators.
type Server struct {
	catalog *catalog.Catalog
	mux     *http.ServeMux
	http    *http.Server
	logger  zerolog.Logger
}

// NewServer creates a peer API server over the given catalog.
func NewServer(cat *catalog.Catalog) *Server {
	mux := http.NewServeMux()
	s := &Server{
		catalog: cat,
		mux:     mux,
		logger:  log.WithComponent("api"),
	}

	mux.HandleFunc("GET /v1/years", s.yearsHandler)
	mux.HandleFunc("GET /v1/years/{year}/checksum", s.yearChecksumHandler)
	mux.HandleFunc("GET /v1/years/{year}/months", s.monthsHandler)
	mux.HandleFunc("GET /v1/years/{year}/months/{month}/checksum", s.monthChecksumHandler)
	mux.HandleFunc("GET /v1/years/{year}/months/{month}/days", s.daysHandler)
	mux.HandleFunc("GET /v1/days/{date}/checksum", s.dayChecksumHandler)
	mux.HandleFunc("GET /v1/days/{date}/objects", s.dayObjectsHandler)
	mux.HandleFunc("PUT /v1/days/{date}", s.putDayHandler)
	mux.HandleFunc("GET /healthz", s.healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	return s
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts serving on addr and blocks until Stop or a listen failure.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("Peer API listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) yearsHandler(w http.ResponseWriter, r *http.Request) {
	years, err := s.catalog.ListYears()
	if err != nil {
		s.writeError(w, "years", err)
		return
	}
	s.writeJSON(w, "years", http.StatusOK, YearsResponse{Years: years})
}

func (s *Server) yearChecksumHandler(w http.ResponseWriter, r *http.Request) {
	year, ok := s.pathInt(w, r, "year")
	if !ok {
		return
	}
	cs, err := s.catalog.YearChecksum(year)
	if err != nil {
		s.writeError(w, "year_checksum", err)
		return
	}
	s.writeJSON(w, "year_checksum", http.StatusOK, ChecksumResponse{Checksum: cs})
}

func (s *Server) monthsHandler(w http.ResponseWriter, r *http.Request) {
	year, ok := s.pathInt(w, r, "year")
	if !ok {
		return
	}
	months, err := s.catalog.ListMonths(year)
	if err != nil {
		s.writeError(w, "months", err)
		return
	}
	s.writeJSON(w, "months", http.StatusOK, MonthsResponse{Months: months})
}

func (s *Server) monthChecksumHandler(w http.ResponseWriter, r *http.Request) {
	year, ok := s.pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := s.pathInt(w, r, "month")
	if !ok {
		return
	}
	cs, err := s.catalog.MonthChecksum(year, month)
	if err != nil {
		s.writeError(w, "month_checksum", err)
		return
	}
	s.writeJSON(w, "month_checksum", http.StatusOK, ChecksumResponse{Checksum: cs})
}

func (s *Server) daysHandler(w http.ResponseWriter, r *http.Request) {
	year, ok := s.pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := s.pathInt(w, r, "month")
	if !ok {
		return
	}
	days, err := s.catalog.ListDays(year, month)
	if err != nil {
		s.writeError(w, "days", err)
		return
	}
	s.writeJSON(w, "days", http.StatusOK, DaysResponse{Days: days})
}

func (s *Server) dayChecksumHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	cs, err := s.catalog.DayChecksum(d)
	if err != nil {
		s.writeError(w, "day_checksum", err)
		return
	}
	s.writeJSON(w, "day_checksum", http.StatusOK, ChecksumResponse{Checksum: cs})
}

func (s *Server) dayObjectsHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	ids, err := s.catalog.DayObjects(d)
	if err != nil {
		s.writeError(w, "day_objects", err)
		return
	}
	if ids == nil {
		ids = []types.ObjectID{}
	}
	s.writeJSON(w, "day_objects", http.StatusOK, ObjectsResponse{Objects: ids})
}

func (s *Server) putDayHandler(w http.ResponseWriter, r *http.Request) {
	d, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	var req PutDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "put_day", fmt.Errorf("%w: %v", types.ErrInvalidArgument, err))
		return
	}
	if err := s.catalog.PutDay(d, req.Objects); err != nil {
		s.writeError(w, "put_day", err)
		return
	}
	metrics.APIRequestsTotal.WithLabelValues("put_day", "204").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, "healthz", http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

func (s *Server) pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		s.writeError(w, name, fmt.Errorf("%w: malformed %s %q", types.ErrInvalidArgument, name, r.PathValue(name)))
		return 0, false
	}
	return v, true
}

func (s *Server) pathDate(w http.ResponseWriter, r *http.Request) (types.Date, bool) {
	d, err := types.ParseDate(r.PathValue("date"))
	if err != nil {
		s.writeError(w, "date", err)
		return types.Date{}, false
	}
	return d, true
}

func (s *Server) writeJSON(w http.ResponseWriter, endpoint string, status int, payload any) {
	metrics.APIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, endpoint string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrInvalidArgument):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Request failed")
	}
	metrics.APIRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}
