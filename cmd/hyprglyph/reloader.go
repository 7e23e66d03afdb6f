package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/hyprglyph/hyprglyph/internal/config"
	"github.com/hyprglyph/hyprglyph/internal/metrics"
	"github.com/hyprglyph/hyprglyph/internal/renamer"
	"github.com/hyprglyph/hyprglyph/internal/rules"
	"github.com/hyprglyph/hyprglyph/internal/util"
)

// reloader reparses the configuration file and swaps the compiled rule set
// into the running renamer. A document that fails to parse is rejected and
// the previous generation stays in effect.
type reloader struct {
	logger    *util.Logger
	path      string
	ren       *renamer.Renamer
	collector *metrics.Collector

	mu       sync.Mutex
	lastGood []byte
}

func newReloader(logger *util.Logger, path string, ren *renamer.Renamer, collector *metrics.Collector, initial []byte) *reloader {
	return &reloader{
		logger:    logger,
		path:      path,
		ren:       ren,
		collector: collector,
		lastGood:  initial,
	}
}

func (r *reloader) reload(ctx context.Context, reason string) error {
	r.logger.Infof("%s, reloading config", reason)
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.collector.RecordReload(false)
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		r.collector.RecordReload(false)
		r.mu.Lock()
		diff := config.DiffSerialized(r.lastGood, data)
		r.mu.Unlock()
		if diff != "" {
			r.logger.Debugf("rejected config diff:\n%s", diff)
		}
		return fmt.Errorf("config rejected, keeping previous rules: %w", err)
	}
	for _, issue := range cfg.Lint() {
		r.logger.Warnf("config lint: %s", issue.Error())
	}
	r.ren.ReloadRules(rules.Build(cfg, r.logger))
	r.mu.Lock()
	r.lastGood = data
	r.mu.Unlock()
	r.collector.RecordReload(true)
	if err := r.ren.Refresh(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("refresh after reload: %w", err)
	}
	return nil
}
