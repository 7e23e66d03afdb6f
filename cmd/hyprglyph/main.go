package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hyprglyph/hyprglyph/internal/config"
	"github.com/hyprglyph/hyprglyph/internal/control"
	"github.com/hyprglyph/hyprglyph/internal/ipc"
	"github.com/hyprglyph/hyprglyph/internal/metrics"
	"github.com/hyprglyph/hyprglyph/internal/renamer"
	"github.com/hyprglyph/hyprglyph/internal/rules"
	"github.com/hyprglyph/hyprglyph/internal/util"
)

func main() {
	home, _ := os.UserHomeDir()
	defaultConfig := filepath.Join(home, ".config", "hyprglyph", "config.yaml")

	cfgPath := flag.String("config", defaultConfig, "path to YAML config")
	dryRun := flag.Bool("dry-run", false, "log renames instead of dispatching them")
	logLevel := flag.String("log-level", "info", "log level (trace|debug|info|warn|error)")
	dispatchStrategy := flag.String("dispatch", string(ipc.DispatchStrategySocket), "dispatch strategy (socket|hyprctl)")
	enableMetrics := flag.Bool("metrics", true, "collect event and rename counters")
	flag.Parse()

	selectedStrategy := ipc.DispatchStrategy(strings.ToLower(*dispatchStrategy))
	switch selectedStrategy {
	case ipc.DispatchStrategySocket, ipc.DispatchStrategyHyprctl:
	default:
		exitErr(fmt.Errorf("unsupported dispatch strategy %q", *dispatchStrategy))
	}

	logger := util.NewLogger(util.ParseLogLevel(*logLevel))

	if created, err := config.EnsureDefault(*cfgPath); err != nil {
		exitErr(fmt.Errorf("ensure config: %w", err))
	} else if created {
		logger.Infof("wrote default config to %s", *cfgPath)
	}
	data, err := os.ReadFile(*cfgPath)
	if err != nil {
		exitErr(fmt.Errorf("read config: %w", err))
	}
	cfg, err := config.Parse(data)
	if err != nil {
		exitErr(fmt.Errorf("load config: %w", err))
	}
	for _, issue := range cfg.Lint() {
		logger.Warnf("config lint: %s", issue.Error())
	}

	cfgFullPath, err := filepath.Abs(*cfgPath)
	if err != nil {
		exitErr(fmt.Errorf("resolve config path: %w", err))
	}
	cfgFullPath = filepath.Clean(cfgFullPath)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		exitErr(fmt.Errorf("watch config: %w", err))
	}
	defer watcher.Close()
	cfgDir := filepath.Dir(cfgFullPath)
	if err := watcher.Add(cfgDir); err != nil {
		exitErr(fmt.Errorf("watch config dir: %w", err))
	}
	if err := watcher.Add(cfgFullPath); err != nil {
		logger.Debugf("unable to watch config file directly: %v", err)
	}
	reloadRequests := make(chan string, 1)
	go watchConfig(logger, watcher, cfgFullPath, reloadRequests)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hypr, strategy, err := ipc.NewEngineClient(logger, selectedStrategy)
	if err != nil {
		exitErr(fmt.Errorf("configure dispatch strategy: %w", err))
	}
	logger.Infof("using %s dispatch strategy", strategy)

	collector := metrics.NewCollector(*enableMetrics)
	ren := renamer.New(hypr, logger, rules.Build(cfg, logger), *dryRun, collector)
	rel := newReloader(logger, cfgFullPath, ren, collector, data)
	reload := func(reason string) error {
		return rel.reload(ctx, reason)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	ctrlSrv, err := control.NewServer(ren, logger, collector, cfgFullPath, *dryRun, reload)
	if err != nil {
		exitErr(fmt.Errorf("start control server: %w", err))
	}

	errs := make(chan error, 2)
	go func() {
		errs <- ren.Run(ctx)
	}()
	go func() {
		errs <- ctrlSrv.Serve(ctx)
	}()

	for {
		select {
		case err := <-errs:
			if err != nil && err != context.Canceled {
				logger.Errorf("renamer exited: %v", err)
				os.Exit(1)
			}
			logger.Infof("renamer stopped")
			return
		case reason := <-reloadRequests:
			if err := reload(reason); err != nil {
				logger.Errorf("reload failed: %v", err)
			}
		case sig := <-sigs:
			switch sig {
			case syscall.SIGHUP:
				if err := reload("received SIGHUP"); err != nil {
					logger.Errorf("reload failed: %v", err)
				}
			case os.Interrupt, syscall.SIGTERM:
				logger.Infof("received %s, shutting down", sig)
				if err := ren.ResetLabels(); err != nil {
					logger.Warnf("reset labels: %v", err)
				}
				cancel()
			}
		}
	}
}

func watchConfig(logger *util.Logger, watcher *fsnotify.Watcher, target string, reloadRequests chan<- string) {
	const debounceWindow = 250 * time.Millisecond
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					<-timerCh
				}
				timer.Reset(debounceWindow)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			select {
			case reloadRequests <- "config file updated":
			default:
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warnf("config watcher error: %v", err)
		}
	}
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
