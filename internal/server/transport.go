// Package server exposes the query service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"docsearch/internal/index"
	"docsearch/internal/meta"
	"docsearch/internal/query"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// ContentType represents JSON content type.
	ContentType = "application/json"

	queryKey = "q"
	limitKey = "limit"
)

var errInvalidLimit = errors.New("limit must be a non-negative integer")

type searchRes struct {
	Query string        `json:"query"`
	Total int           `json:"total"`
	Hits  []index.Entry `json:"hits"`
}

type healthRes struct {
	Status  string `json:"status"`
	Project string `json:"project,omitempty"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
}

type errorRes struct {
	Error string `json:"error"`
}

// MakeHandler returns the HTTP API handler with health check and metrics.
func MakeHandler(svc query.Service, info meta.Info, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	started := time.Now()

	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)

	mux.Get("/search", searchHandler(svc, logger))
	mux.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		encodeResponse(w, http.StatusOK, healthRes{
			Status:  "pass",
			Project: info.Project,
			Version: info.Version,
			Uptime:  time.Since(started).Round(time.Second).String(),
		})
	})
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return mux
}

// searchHandler serves GET /search?q=<text>[&limit=<n>]. limit narrows
// the service cap; 0 or absent keeps it.
func searchHandler(svc query.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, err := decodeLimit(q.Get(limitKey))
		if err != nil {
			logger.Debug("Rejected search request", slog.String("limit", q.Get(limitKey)))
			encodeResponse(w, http.StatusBadRequest, errorRes{Error: err.Error()})
			return
		}

		hits := svc.Search(q.Get(queryKey))
		if limit > 0 && len(hits) > limit {
			hits = hits[:limit]
		}
		encodeResponse(w, http.StatusOK, searchRes{Query: q.Get(queryKey), Total: len(hits), Hits: hits})
	}
}

func decodeLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errInvalidLimit
	}
	return n, nil
}

func encodeResponse(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
