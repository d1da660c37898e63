package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/api"
	"github.com/sitewatch-io/sitewatch/internal/config"
	"github.com/sitewatch-io/sitewatch/internal/event"
	"github.com/sitewatch-io/sitewatch/internal/monitor"
	"github.com/sitewatch-io/sitewatch/internal/notify"
	"github.com/sitewatch-io/sitewatch/internal/probe"
	"github.com/sitewatch-io/sitewatch/internal/repo"
	"github.com/sitewatch-io/sitewatch/internal/store"
	"github.com/sitewatch-io/sitewatch/internal/version"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Load configuration (before logger, so log level/format can be configured).
	v, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("SiteWatch starting", zap.String("version", version.Short()))

	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded", zap.String("source", f))
	} else {
		logger.Warn("no configuration file found, using defaults")
	}

	monCfg := monitor.DefaultConfig()
	if err := v.UnmarshalKey("monitor", &monCfg); err != nil {
		logger.Fatal("invalid monitor configuration", zap.Error(err))
	}
	notifyCfg := notify.DefaultConfig()
	if err := v.UnmarshalKey("notifications", &notifyCfg); err != nil {
		logger.Fatal("invalid notifications configuration", zap.Error(err))
	}
	summaryCfg := monitor.DefaultSummaryConfig()
	if err := v.UnmarshalKey("summary", &summaryCfg); err != nil {
		logger.Fatal("invalid summary configuration", zap.Error(err))
	}

	// Open database.
	dbPath := v.GetString("database.path")
	if dbPath == "" {
		dbPath = "sitewatch.db"
	}
	db, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database initialized", zap.String("path", dbPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, err := repo.New(ctx, db)
	if err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	bus := event.NewBus(logger.Named("event"))

	// Probers.
	probeCfg := probe.Config{
		Timeout:       monCfg.ProbeTimeout,
		StreamTimeout: monCfg.StreamTimeout,
		PingCount:     monCfg.PingCount,
		SNMPPort:      monCfg.SNMPPort,
	}
	pinger := probe.NewICMPPinger(probeCfg.PingCount, logger.Named("icmp"))
	deviceProber := probe.NewDeviceProber(pinger, probe.NewSNMPQuerier(logger.Named("snmp")), probeCfg, logger.Named("probe"))
	cameraProber := probe.NewCameraProber(pinger, probe.NewRTSPChecker(probeCfg.StreamTimeout, logger.Named("rtsp")), probeCfg, logger.Named("probe"))

	// Notification channels.
	dispatcher := notify.NewDispatcher(notifyCfg.Channels(), notifyCfg.Timeout, logger.Named("notify"))

	// Alerts created through the API are delivered over the same channels
	// the scheduler uses. Scheduler alerts dispatch inline, so only API
	// events are handled here.
	bus.Subscribe(event.TopicAlertCreated, func(ctx context.Context, ev event.Event) {
		if ev.Source != "api" {
			return
		}
		a, ok := ev.Payload.(*models.Alert)
		if !ok {
			return
		}
		name, addr := "System", ""
		switch a.EntityKind {
		case models.KindDevice:
			if d, err := r.GetDevice(ctx, a.EntityID); err == nil && d != nil {
				name, addr = d.Name, d.Address
			}
		case models.KindCamera:
			if c, err := r.GetCamera(ctx, a.EntityID); err == nil && c != nil {
				name, addr = c.Name, c.Address
			}
		}
		dispatcher.Dispatch(ctx, notify.AlertContext{Alert: a, EntityName: name, EntityAddr: addr})
	})

	// Monitor.
	mon := monitor.New(monCfg, models.Severity(notifyCfg.MinSeverity), monitor.Deps{
		Repo:         r,
		DeviceProber: deviceProber,
		CameraProber: cameraProber,
		Dispatcher:   dispatcher,
		Bus:          bus,
		Logger:       logger.Named("monitor"),
		Summary:      summaryCfg,
	})
	mon.Start(ctx)

	// HTTP server.
	addr := v.GetString("server.host") + ":" + v.GetString("server.port")
	if addr == ":" {
		addr = "0.0.0.0:8080"
	}
	readyCheck := api.ReadinessChecker(func(ctx context.Context) error {
		return db.DB().PingContext(ctx)
	})
	srv := api.New(addr, r, mon, bus, readyCheck, logger.Named("http"))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("SiteWatch ready", zap.String("addr", addr))

	// Wait for shutdown signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	mon.Stop()

	logger.Info("SiteWatch stopped")
}
