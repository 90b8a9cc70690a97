package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/samvad-hq/ltiaas-client/internal/config"
	"github.com/samvad-hq/ltiaas-client/internal/logger"
	"github.com/samvad-hq/ltiaas-client/internal/metrics"
	"github.com/samvad-hq/ltiaas-client/internal/server"
	"github.com/samvad-hq/ltiaas-client/internal/storage"
	"github.com/samvad-hq/ltiaas-client/pkg/deployments"
	"github.com/samvad-hq/ltiaas-client/pkg/ltiaas"
	"github.com/samvad-hq/ltiaas-client/pkg/publishers"
)

const shutdownTimeout = 10 * time.Second

// Launcher is the launch server runtime. It owns the HTTP listener, the launch
// ledger and the event fanout.
type Launcher struct {
	cfg    *config.Config
	srv    *http.Server
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
}

// NewLauncher builds the runtime from config.
func NewLauncher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Launcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	clients, defaultID, err := BuildClients(cfg, log)
	if err != nil {
		return nil, err
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		LaunchTTL:       cfg.LaunchTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"launch_ttl_seconds":       int(cfg.LaunchTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	handlerClients := make(map[string]server.LTIaaSClient, len(clients))
	for id, c := range clients {
		handlerClients[id] = c
	}
	opts := server.Options{
		Clients:            handlerClients,
		DefaultDeployment:  defaultID,
		Store:              store,
		Logger:             log,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if fanout.Size() > 0 {
		opts.Events = fanout
	}

	return &Launcher{
		cfg: cfg,
		srv: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.New(opts).Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:  store,
		fanout: fanout,
		log:    log,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (l *Launcher) Run(ctx context.Context) error {
	if l == nil || l.srv == nil {
		return fmt.Errorf("launcher is not initialized")
	}
	defer l.close()

	errCh := make(chan error, 1)
	go func() {
		l.log.InfoObj("launch server listening", "http_addr", l.srv.Addr)
		errCh <- l.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		l.log.InfoObj("launch server exiting", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := l.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Handler exposes the router, mainly for tests.
func (l *Launcher) Handler() http.Handler { return l.srv.Handler }

func (l *Launcher) close() {
	if err := l.store.Close(); err != nil {
		l.log.ErrorObj("storage close failed", "error", err)
	}
	if err := l.fanout.Close(); err != nil {
		l.log.ErrorObj("publishers close failed", "error", err)
	}
}

// BuildClients returns one client per configured deployment and the id used
// for the unprefixed routes. The env deployment wins the default slot; otherwise
// the first enabled entry of the deployments file does.
func BuildClients(cfg *config.Config, log logger.Logger) (map[string]*ltiaas.Client, string, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	var entries []deployments.Deployment
	if cfg.DeploymentsFile != "" {
		reg, err := deployments.Load(cfg.DeploymentsFile)
		if err != nil {
			return nil, "", fmt.Errorf("load deployments: %w", err)
		}
		entries = reg.Enabled()
	}
	if cfg.HasDefaultDeployment() {
		entries = append([]deployments.Deployment{{
			ID:      deployments.DefaultID,
			BaseURL: cfg.LTIaaSBaseURL,
			APIKey:  cfg.LTIaaSAPIKey,
		}}, entries...)
	}
	if len(entries) == 0 {
		return nil, "", fmt.Errorf("no LTIaaS deployment configured (set LTIAAS_BASE_URL and LTIAAS_API_KEY or DEPLOYMENTS_FILE)")
	}

	reg, err := deployments.New(entries)
	if err != nil {
		return nil, "", fmt.Errorf("deployments: %w", err)
	}
	defaultID := reg.Enabled()[0].ID

	clients := reg.Clients(func(d deployments.Deployment) []ltiaas.Option {
		return []ltiaas.Option{
			ltiaas.WithTimeout(cfg.HTTPTimeout),
			ltiaas.WithLogger(log),
			ltiaas.WithObserver(metrics.ClientObserver(d.ID)),
		}
	})

	ids := make([]string, 0, len(clients))
	for id := range clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	log.InfoObj("deployments loaded", "deployments_meta", map[string]any{
		"count":   len(ids),
		"ids":     ids,
		"default": defaultID,
	})
	return clients, defaultID, nil
}

// buildFanout returns an empty fanout when no publishers file is configured.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		return publishers.NewFanout(nil), nil
	}
	reg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}
