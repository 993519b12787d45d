package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/automaxprocs/maxprocs"

	"meetcron/internal/agenda"
	"meetcron/internal/backup"
	"meetcron/internal/config"
	"meetcron/internal/crontab"
	"meetcron/internal/gcal"
	"meetcron/internal/holiday"
	appLog "meetcron/internal/log"
	"meetcron/internal/run"
	"meetcron/internal/runlog"
	"meetcron/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	daemon     bool
}

func main() {
	appLog.Info("meetcron starting", "version", "0.1.0")

	flags := parseFlags()

	if _, err := maxprocs.Set(); err != nil {
		appLog.Error("failed to set GOMAXPROCS", err)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	if conf.Debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"offset_minutes", conf.OffsetMinutes,
		"log_file", conf.LogFile,
		"log_limit", conf.LogLimit,
		"enable_backup", conf.EnableBackup,
		"daemon", flags.daemon,
	)

	coordinator, err := buildCoordinator(conf)
	if err != nil {
		appLog.Error("failed to assemble run pipeline", err)
		os.Exit(1)
	}

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

	if !flags.daemon {
		if _, err := coordinator.Run(ctx); err != nil {
			appLog.Error("run failed", err)
			os.Exit(1)
		}
		return
	}

	if err := runDaemon(ctx, conf, coordinator); err != nil {
		appLog.Error("daemon failed", err)
		os.Exit(1)
	}

	appLog.Info("meetcron exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", defaultConfigPath(), "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address for daemon mode (overrides config if set)")
	flag.BoolVar(&cfg.daemon, "daemon", false, "Keep running: reconcile on the refresh schedule and serve the status API")

	flag.Parse()

	return cfg
}

func defaultConfigPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.config/meetcron/config.yaml"
	}
	return "./config.yaml"
}

// buildCoordinator wires the production collaborators from config.
func buildCoordinator(conf *config.Config) (*run.Coordinator, error) {
	loc := time.Local
	if conf.Timezone != "" {
		l, err := time.LoadLocation(conf.Timezone)
		if err != nil {
			return nil, err
		}
		loc = l
	}

	parser, err := agenda.NewParser(conf.LinkPattern, conf.AllDayMarker)
	if err != nil {
		return nil, err
	}

	calendar := &gcal.Source{
		Binary:  conf.Calendar.Binary,
		Exclude: conf.Calendar.Exclude,
	}

	classifier := &agenda.Classifier{
		Lookup:       holidayLookup(conf, calendar, loc),
		AllDayMarker: conf.AllDayMarker,
		HolidayFirst: conf.Classify.HolidayFirst,
	}

	return &run.Coordinator{
		Calendar: calendar,
		Store:    &crontab.Store{Binary: "crontab"},
		Log:      &runlog.FileLog{Path: conf.LogFile},
		Backup:   &backup.DirSink{Dir: conf.BackupDir},
		Parser:   parser,
		Classifier: classifier,
		Reconciler: &crontab.Reconciler{
			Anchor:        conf.Anchor,
			OffsetMinutes: conf.OffsetMinutes,
			LaunchCommand: conf.LaunchCommand,
			PauseCommand:  conf.PauseCommand,
		},
		EnableBackup: conf.EnableBackup,
		LogLimit:     conf.LogLimit,
		Clock:        func() time.Time { return time.Now().In(loc) },
	}, nil
}

// holidayLookup prefers a configured ICS feed and falls back to scanning the
// user's calendars for one matching the holiday hint.
func holidayLookup(conf *config.Config, calendar *gcal.Source, loc *time.Location) agenda.HolidayLookup {
	if conf.Holiday.ICSURL != "" || len(conf.Holiday.ICSByCountry) > 0 {
		return holiday.NewFeedLookup(conf.Holiday, nil, loc)
	}
	return &holiday.CalendarLookup{
		Source:       calendar,
		Hint:         conf.Calendar.HolidayHint,
		AllDayMarker: conf.AllDayMarker,
	}
}

// runDaemon reconciles on the refresh schedule and serves the status API
// until the context is cancelled. Runs are serialized: a tick that arrives
// while a run is active is skipped.
func runDaemon(ctx context.Context, conf *config.Config, coordinator *run.Coordinator) error {
	server := web.NewServer(conf, &runlog.FileLog{Path: conf.LogFile})

	var running sync.Mutex
	runOnce := func() {
		if !running.TryLock() {
			appLog.Info("previous run still active, skipping this tick")
			return
		}
		defer running.Unlock()

		report, err := coordinator.Run(ctx)
		if err != nil {
			appLog.Error("scheduled run failed", err)
			return
		}
		server.SetLastReport(report)
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, runOnce); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	httpServer := &http.Server{
		Addr:    conf.Listen,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Run immediately on startup rather than waiting for the first tick.
	runOnce()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
