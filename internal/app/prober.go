package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/envelope-client/internal/config"
	"github.com/samvad-hq/envelope-client/internal/logger"
	"github.com/samvad-hq/envelope-client/internal/prober"
	"github.com/samvad-hq/envelope-client/internal/storage"
	"github.com/samvad-hq/envelope-client/pkg/httpclient"
	"github.com/samvad-hq/envelope-client/pkg/probes"
	"github.com/samvad-hq/envelope-client/pkg/publishers"
)

// Prober is the scheduled probing runtime. It owns the probe registry, the
// publishers and the state store, and re-runs the probe pass on an interval.
type Prober struct {
	cfg      *config.Config
	probes   []probes.Probe
	fanout   *publishers.Fanout
	service  *prober.Service
	interval time.Duration
	log      logger.Logger
	store    storage.Store
}

// NewProber builds a prober runtime from config files.
func NewProber(ctx context.Context, cfg *config.Config, log logger.Logger) (*Prober, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	probeReg, err := probes.LoadRegistry(cfg.ProbesFile)
	if err != nil {
		return nil, fmt.Errorf("load probes registry: %w", err)
	}
	probeList := probeReg.All()
	probeIDs := make([]string, 0, len(probeList))
	for _, p := range probeList {
		probeIDs = append(probeIDs, p.ID)
	}
	log.InfoObj("probes registry loaded", "probes_meta", map[string]any{
		"count": len(probeIDs),
		"ids":   probeIDs,
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		StateTTL:        cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"state_ttl_seconds":        int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	transport := httpclient.NewRestyClient(httpclient.NewRestyHTTPClient(cfg.BaseURL, cfg.RequestTimeout))
	service := prober.NewService(transport, fanout, log, store)

	return &Prober{
		cfg:      cfg,
		probes:   probeList,
		fanout:   fanout,
		service:  service,
		interval: cfg.ProbeInterval,
		log:      log,
		store:    store,
	}, nil
}

// buildFanout loads the publishers file. An empty path disables publishing.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		log.WarnObj("no publishers file configured; outcomes are only logged", "publishers_file", path)
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	clients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(clients), nil
}

// Run starts the probe loop until the context is cancelled.
func (p *Prober) Run(ctx context.Context) error {
	if p == nil || p.service == nil {
		return fmt.Errorf("prober is not initialized")
	}
	defer p.close()

	p.log.InfoObj("prober loop starting", "prober_state", map[string]any{
		"probes_count":     len(p.probes),
		"publishers_count": p.fanout.Size(),
		"probe_interval":   p.interval.String(),
	})

	if err := p.runOnce(ctx); err != nil {
		p.log.ErrorObj("initial probe pass failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("prober loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := p.runOnce(ctx); err != nil {
				p.log.ErrorObj("scheduled probe pass failed", "error", err)
			}
		}
	}
}

// RunOnce performs a single pass and releases resources.
func (p *Prober) RunOnce(ctx context.Context) error {
	if p == nil || p.service == nil {
		return fmt.Errorf("prober is not initialized")
	}
	defer p.close()
	return p.runOnce(ctx)
}

func (p *Prober) runOnce(ctx context.Context) error {
	start := time.Now()
	if err := p.service.Run(ctx, p.probes); err != nil {
		return err
	}
	p.log.InfoObj("probe pass completed", "probe_pass", map[string]any{
		"probes_count": len(p.probes),
		"elapsed_ms":   time.Since(start).Milliseconds(),
	})
	return nil
}

func (p *Prober) close() {
	var errs []error
	if err := p.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		p.log.ErrorObj("prober shutdown failed", "error", err)
	}
}
