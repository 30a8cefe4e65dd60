package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/njchilds90/adgraph"
)

type server struct {
	cfg Config
	log *logrus.Logger
}

func newRouter(cfg Config, log *logrus.Logger) http.Handler {
	s := &server{cfg: cfg, log: log}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.recoverer)

	// POST /tool — handle a tool call
	r.Post("/tool", s.handleTool)
	// GET /schema — return tool schema for agent registration
	r.Get("/schema", s.handleSchema)
	// GET /health — liveness check
	r.Get("/health", s.handleHealth)
	return r
}

func (s *server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.WithFields(logrus.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"path":       r.URL.Path,
				}).Errorf("panic: %v\n%s", rec, debug.Stack())
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *server) handleTool(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := s.log.WithField("request_id", middleware.GetReqID(r.Context()))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req adgraph.ToolRequest
	if err := dec.Decode(&req); err != nil {
		log.Warnf("bad tool request: %v", err)
		_ = writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		log.Warn("bad tool request: trailing data")
		_ = writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	resp := adgraph.HandleToolCall(req)
	log = log.WithFields(logrus.Fields{"tool": req.Tool, "duration": time.Since(start)})
	if resp.Error != "" {
		log.Debugf("tool call failed: %s", resp.Error)
	} else {
		log.Debug("tool call")
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		log.Errorf("write response: %v", err)
	}
}

func (s *server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, adgraph.MCPToolSpec())
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
