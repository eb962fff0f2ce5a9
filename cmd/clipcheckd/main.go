package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"clipcheck/internal/browser"
	"clipcheck/internal/config"
	"clipcheck/internal/daemon"
	"clipcheck/internal/deps"
	"clipcheck/internal/logging"
	"clipcheck/internal/queue"
	"clipcheck/internal/results"
	"clipcheck/internal/services/twocaptcha"
	"clipcheck/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/clipcheck/config.toml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	statuses := deps.CheckBinaries(deps.Defaults(cfg.Extraction.FFmpegCommand, cfg.Extraction.YtDlpCommand))
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, status := range missing {
			names = append(names, status.Command)
		}
		logger.Error("required binaries missing", logging.String("binaries", strings.Join(names, ", ")))
		os.Exit(1)
	}
	for _, status := range statuses {
		if !status.Available && status.Optional {
			logger.Warn("optional binary unavailable, fallback extraction disabled",
				logging.String("binary", status.Command),
				logging.String("detail", status.Detail))
		}
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	resultStore, err := results.NewStore(cfg)
	if err != nil {
		logger.Error("open result store", logging.Error(err))
		os.Exit(1)
	}

	var solver browser.Solver
	if strings.TrimSpace(cfg.Captcha.APIKey) != "" {
		solver = newCaptchaSolver(cfg)
	}
	pool := browser.NewPool(cfg, logger, solver)

	manager := workflow.NewManager(cfg, store, logger)
	registerStages(manager, cfg, store, resultStore, pool, logger)

	d, err := daemon.New(cfg, store, resultStore, pool, manager, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("clipcheckd shutting down")
}

func newCaptchaSolver(cfg *config.Config) browser.Solver {
	opts := []twocaptcha.Option{}
	if cfg.Captcha.BaseURL != "" {
		opts = append(opts, twocaptcha.WithBaseURL(cfg.Captcha.BaseURL))
	}
	if interval := cfg.Captcha.PollInterval(); interval > 0 {
		opts = append(opts, twocaptcha.WithPollInterval(interval))
	}
	if timeout := cfg.Captcha.Timeout(); timeout > 0 {
		opts = append(opts, twocaptcha.WithTimeout(timeout))
	}
	return twocaptcha.NewClient(cfg.Captcha.APIKey, opts...)
}
