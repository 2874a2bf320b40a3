package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/me/storecms/pkg/model"
)

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Upstream  string `json:"upstream"`
	RateLimit string `json:"rate_limit"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	upstream := "configured"
	if s.api.URL == "" {
		upstream = "missing"
	} else if _, err := parseAPIURL(s.api.URL); err != nil {
		upstream = "invalid"
	}
	limit := "disabled"
	if s.limiter != nil {
		limit = "enabled"
	}

	respondOK(w, RequestIDFromContext(r.Context()), healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Upstream:  upstream,
		RateLimit: limit,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, RequestIDFromContext(r.Context()), http.StatusNotFound,
		model.NewNotFoundError("route", r.Method+" "+r.URL.Path))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, RequestIDFromContext(r.Context()), http.StatusMethodNotAllowed,
		model.NewMethodNotAllowedError(r.Method, r.URL.Path))
}
