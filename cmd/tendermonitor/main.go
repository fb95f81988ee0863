package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TenderMonitor/internal/app"
	"TenderMonitor/internal/config"
	"TenderMonitor/internal/logging"
	"TenderMonitor/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.New("tendermonitor").Printf("configuration error: %v", err)
		os.Exit(1)
	}
	log := logging.NewWithFormat(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, log)
	if err != nil {
		log.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		if app.IsLocked(err) {
			log.Warn("skipping run", "error", err)
		} else {
			log.Error("run failed", "error", err)
		}
		stop()
		os.Exit(1)
	}
}
