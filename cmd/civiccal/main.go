package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"civiccal/internal/client"
	"civiccal/internal/config"
	"civiccal/internal/controller"
	"civiccal/internal/export"
	appLog "civiccal/internal/log"
	"civiccal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	apiBaseURL string
}

func main() {
	appLog.Info("civiccal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override the config file when provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.apiBaseURL != "" {
		conf.APIBaseURL = flags.apiBaseURL
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	appLog.Info("effective config",
		"listen", conf.Listen,
		"api_base_url", conf.APIBaseURL,
		"refresh", conf.RefreshCron,
		"event_types", len(conf.EventTypes),
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	api := client.New(conf.APIBaseURL)
	ctrl := controller.New(api, export.New(api), conf.EventTypes, resolveLocationOrLocal(conf.Timezone))

	// Initial load of the current month window. A failure here is not
	// fatal; the loader keeps its error state and the scheduled refresh
	// retries on the next tick.
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := ctrl.Refresh(loadCtx); err != nil {
		appLog.Error("initial period load failed", err)
	}
	loadCancel()

	// Background refresh of the visible window on the configured cron
	// schedule.
	var scheduler *cron.Cron
	if conf.RefreshCron != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(conf.RefreshCron, func() {
			tickCtx, tickCancel := context.WithTimeout(ctx, 30*time.Second)
			defer tickCancel()
			if err := ctrl.Refresh(tickCtx); err != nil {
				appLog.Error("scheduled refresh failed", err)
			}
		})
		if err != nil {
			appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
			os.Exit(1)
		}
		scheduler.Start()
		appLog.Info("scheduled refresh enabled", "refresh", conf.RefreshCron)
	}

	srv := web.NewServer(conf, ctrl)
	if err := srv.Serve(ctx); err != nil {
		appLog.Error("HTTP server failed", err)
		os.Exit(1)
	}

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	appLog.Info("civiccal exiting")
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/civiccal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.apiBaseURL, "api-base-url", "", "Calendar API base URL (overrides config if set)")

	flag.Parse()

	return cfg
}
