// Package server exposes the HTTP endpoints LTIaaS redirects launches to.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samvad-hq/ltiaas-client/internal/domain"
	"github.com/samvad-hq/ltiaas-client/internal/logger"
	"github.com/samvad-hq/ltiaas-client/internal/metrics"
	"github.com/samvad-hq/ltiaas-client/internal/storage"
	"github.com/samvad-hq/ltiaas-client/pkg/ltiaas"
	"github.com/samvad-hq/ltiaas-client/pkg/publishers"
)

const (
	headerLaunchID     = "X-Launch-ID"
	headerLaunchReplay = "X-Launch-Replay"
)

// LTIaaSClient is the part of *ltiaas.Client the handlers use.
type LTIaaSClient interface {
	GetIDToken(ctx context.Context, ltik string) (any, error)
	GetMemberships(ctx context.Context, ltik string) (any, error)
}

// EventPublisher publishes launch events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Options configures a Server. Clients and DefaultDeployment are required.
type Options struct {
	Clients            map[string]LTIaaSClient
	DefaultDeployment  string
	Store              storage.Store
	Events             EventPublisher
	Logger             logger.Logger
	CORSAllowedOrigins []string
	Now                func() time.Time
}

// Server holds the dependencies of the launch endpoints.
type Server struct {
	clients     map[string]LTIaaSClient
	defaultID   string
	store       storage.Store
	events      EventPublisher
	log         logger.Logger
	corsOrigins []string
	now         func() time.Time
}

// New builds a Server, filling optional dependencies with no-op implementations.
func New(opts Options) *Server {
	s := &Server{
		clients:     opts.Clients,
		defaultID:   opts.DefaultDeployment,
		store:       opts.Store,
		events:      opts.Events,
		log:         opts.Logger,
		corsOrigins: opts.CORSAllowedOrigins,
		now:         opts.Now,
	}
	if s.store == nil {
		s.store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if s.log == nil {
		s.log = logger.NopLogger{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Routes returns the chi router with all endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{headerLaunchID, headerLaunchReplay},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/launch", s.handleLaunch)
	r.Get("/memberships", s.handleMemberships)
	r.Route("/deployments/{deploymentID}", func(dr chi.Router) {
		dr.Get("/launch", s.handleLaunch)
		dr.Get("/memberships", s.handleMemberships)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"deployments": len(s.clients),
	})
}

// handleLaunch exchanges the ltik LTIaaS appended to the redirect for the launch's ID token.
func (s *Server) handleLaunch(w http.ResponseWriter, r *http.Request) {
	deploymentID, client, ok := s.resolve(w, r)
	if !ok {
		return
	}
	ltik, ok := requireLtik(w, r)
	if !ok {
		return
	}

	idToken, err := client.GetIDToken(r.Context(), ltik)
	if err != nil {
		s.writeUpstreamError(w, deploymentID, "idtoken", err)
		return
	}

	launchID := storage.LaunchID(ltik)
	replay, err := s.store.UseLaunch(launchID)
	if err != nil {
		s.log.WarnObj("launch ledger update failed", "launch_ledger_error", map[string]any{
			"deployment_id": deploymentID,
			"launch_id":     launchID,
			"error":         err.Error(),
		})
	}
	metrics.RecordLaunch(deploymentID, replay)

	launch := domain.Launch{
		ID:           launchID,
		DeploymentID: deploymentID,
		Replay:       replay,
		IDToken:      idToken,
		ReceivedAt:   s.now(),
	}
	s.publish(r.Context(), launch)

	s.log.InfoObj("launch handled", "launch", map[string]any{
		"deployment_id": deploymentID,
		"launch_id":     launchID,
		"replay":        replay,
	})

	w.Header().Set(headerLaunchID, launchID)
	if replay {
		w.Header().Set(headerLaunchReplay, "true")
	}
	writeJSON(w, http.StatusOK, idToken)
}

func (s *Server) handleMemberships(w http.ResponseWriter, r *http.Request) {
	deploymentID, client, ok := s.resolve(w, r)
	if !ok {
		return
	}
	ltik, ok := requireLtik(w, r)
	if !ok {
		return
	}

	members, err := client.GetMemberships(r.Context(), ltik)
	if err != nil {
		s.writeUpstreamError(w, deploymentID, "memberships", err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (string, LTIaaSClient, bool) {
	id := chi.URLParam(r, "deploymentID")
	if id == "" {
		id = s.defaultID
	}
	client, ok := s.clients[id]
	if !ok || client == nil {
		writeErr(w, http.StatusNotFound, "unknown deployment")
		return "", nil, false
	}
	return id, client, true
}

func requireLtik(w http.ResponseWriter, r *http.Request) (string, bool) {
	ltik := r.URL.Query().Get("ltik")
	if ltik == "" {
		writeErr(w, http.StatusBadRequest, "missing ltik")
		return "", false
	}
	return ltik, true
}

// publish never fails the launch; delivery problems are logged and counted.
func (s *Server) publish(ctx context.Context, launch domain.Launch) {
	if s.events == nil {
		return
	}
	evt := publishers.NewLaunchEvent(launch)
	delivered, err := s.events.Publish(ctx, evt)
	if delivered > 0 {
		metrics.EventsPublished.WithLabelValues("delivered").Add(float64(delivered))
	}
	if err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		s.log.ErrorObj("launch event publish failed", "launch_event_error", map[string]any{
			"event_id":  evt.ID,
			"launch_id": launch.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

func (s *Server) writeUpstreamError(w http.ResponseWriter, deploymentID, op string, err error) {
	fields := map[string]any{
		"deployment_id": deploymentID,
		"operation":     op,
		"error":         err.Error(),
	}
	body := map[string]any{"error": "upstream request failed"}

	var se *ltiaas.StatusError
	if errors.As(err, &se) {
		fields["upstream_status"] = se.StatusCode
		body["upstream_status"] = se.StatusCode
	}
	s.log.ErrorObj("ltiaas request failed", "upstream_error", fields)
	writeJSON(w, http.StatusBadGateway, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
