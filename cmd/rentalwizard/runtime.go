package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/rentalwizard/internal/backend"
	"github.com/mark3labs/rentalwizard/internal/backendsim"
	"github.com/mark3labs/rentalwizard/internal/config"
	"github.com/mark3labs/rentalwizard/internal/draft"
	"github.com/mark3labs/rentalwizard/internal/hooks"
	"github.com/mark3labs/rentalwizard/internal/logger"
	"github.com/mark3labs/rentalwizard/internal/metrics"
	"github.com/mark3labs/rentalwizard/internal/nats"
	"github.com/mark3labs/rentalwizard/internal/session"
	"github.com/mark3labs/rentalwizard/internal/wizard"
)

// runtime holds the collaborators a wizard session is wired to.
type runtime struct {
	cfg        *config.Config
	nats       *nats.Embedded
	backend    backend.Client
	drafts     draft.Store
	journal    *session.Store
	metrics    *metrics.Recorder
	hooks      *hooks.Runner
	metricsSrv *http.Server
}

// openJournal starts the embedded NATS server and opens the journal stream.
func openJournal(ctx context.Context, c *config.Config) (*nats.Embedded, *session.Store, error) {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating data dir: %w", err)
	}

	embedded, err := nats.Start(c.NATSDir())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start NATS: %w", err)
	}

	stream, err := nats.SetupJournalStream(ctx, embedded.JS)
	if err != nil {
		_ = embedded.Close()
		return nil, nil, fmt.Errorf("failed to setup journal: %w", err)
	}
	return embedded, session.NewStore(embedded.JS, stream), nil
}

// openRuntime wires every collaborator from c. Hook output goes to hookOut.
func openRuntime(ctx context.Context, c *config.Config, hookOut io.Writer) (*runtime, error) {
	rt := &runtime{cfg: c, metrics: metrics.New()}

	var err error
	rt.nats, rt.journal, err = openJournal(ctx, c)
	if err != nil {
		return nil, err
	}

	if rt.drafts, err = openDrafts(ctx, c, rt.nats); err != nil {
		_ = rt.Close()
		return nil, err
	}

	if c.BackendURL != "" {
		rt.backend = backend.NewHTTPClient(backend.Options{
			BaseURL: c.BackendURL,
			Token:   c.APIToken,
			Timeout: c.RequestTimeout,
			Debug:   c.LogLevel == "debug" && c.LogFile != "",
		})
	} else {
		logger.Warn("no backend_url configured, saving to the in-process simulator")
		rt.backend = backendsim.NewRepository()
	}

	hooksCfg, err := loadHooks(c)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	wd, _ := os.Getwd()
	rt.hooks = hooks.NewRunner(hooksCfg, wd, hookOut)

	if c.MetricsAddr != "" {
		rt.serveMetrics(c.MetricsAddr)
	}
	return rt, nil
}

func openDrafts(ctx context.Context, c *config.Config, embedded *nats.Embedded) (draft.Store, error) {
	switch c.DraftStore {
	case config.DraftStoreMemory:
		return draft.NewMemoryStore(), nil
	case config.DraftStoreNATS:
		kv, err := nats.SetupDraftBucket(ctx, embedded.JS)
		if err != nil {
			return nil, fmt.Errorf("failed to setup draft bucket: %w", err)
		}
		return draft.NewKVStore(kv), nil
	default:
		return draft.NewFileStore(c.DraftsDir()), nil
	}
}

func loadHooks(c *config.Config) (*hooks.Config, error) {
	if c.HooksFile != "" {
		return hooks.LoadFile(c.HooksFile)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return hooks.LoadConfig(wd)
}

func (rt *runtime) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())
	rt.metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	srv := rt.metricsSrv
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()
	logger.Info("serving metrics on %s/metrics", addr)
}

// options returns controller options wired to the runtime.
func (rt *runtime) options(nav wizard.Navigator, confirm wizard.Confirmer) wizard.Options {
	return wizard.Options{
		Backend:    rt.backend,
		Drafts:     rt.drafts,
		Navigator:  nav,
		Confirmer:  confirm,
		Journal:    rt.journal,
		Metrics:    rt.metrics,
		Logger:     logger.Named("wizard"),
		OnComplete: rt.hooks.OnPublish,
		OnSave:     rt.hooks.OnSave,
		OnCancel:   rt.hooks.OnCancel,
		DraftKey:   rt.cfg.DraftKey,
	}
}

// Close stops the metrics server and the embedded NATS server.
func (rt *runtime) Close() error {
	var errs []error
	if rt.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		errs = append(errs, rt.metricsSrv.Shutdown(ctx))
	}
	errs = append(errs, rt.nats.Close())
	return errors.Join(errs...)
}
