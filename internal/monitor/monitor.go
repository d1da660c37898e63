// Package monitor schedules periodic polls of devices and cameras,
// tracks status transitions, and drives alerting and notification.
package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sitewatch-io/sitewatch/internal/event"
	"github.com/sitewatch-io/sitewatch/internal/notify"
	"github.com/sitewatch-io/sitewatch/internal/probe"
	"github.com/sitewatch-io/sitewatch/pkg/models"
)

// DeviceProber probes one network device.
type DeviceProber interface {
	Probe(ctx context.Context, d *models.Device) probe.Result
}

// CameraProber probes one IP camera.
type CameraProber interface {
	Probe(ctx context.Context, c *models.Camera) probe.Result
}

// AlertDispatcher fans one alert out to the notification channels.
type AlertDispatcher interface {
	Dispatch(ctx context.Context, ac notify.AlertContext) map[string]notify.Outcome
}

// Repository is the persistence surface the monitor depends on.
type Repository interface {
	StatusRepo
	ListDevices(ctx context.Context) ([]*models.Device, error)
	ListCameras(ctx context.Context) ([]*models.Camera, error)
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	GetCamera(ctx context.Context, id string) (*models.Camera, error)
	InsertAlert(ctx context.Context, a *models.Alert) error
	PurgeAcknowledgedAlerts(ctx context.Context, before time.Time) (int64, error)
	CountDevicesByStatus(ctx context.Context) (map[models.Status]int, error)
	CountCamerasByStatus(ctx context.Context) (map[models.Status]int, error)
	CountAlertsBySeverity(ctx context.Context, since time.Time) (map[models.Severity]int, error)
}

// Deps bundles the monitor's collaborators.
type Deps struct {
	Repo         Repository
	DeviceProber DeviceProber
	CameraProber CameraProber
	Dispatcher   AlertDispatcher
	Bus          *event.Bus
	Logger       *zap.Logger
	Summary      SummaryConfig
}

// Monitor runs the device and camera polling cycles. The two cycles are
// independent; each is driven by its own ticker and a cycle never
// overlaps with the previous run of the same cycle.
type Monitor struct {
	cfg          Config
	summaryCfg   SummaryConfig
	repo         Repository
	deviceProber DeviceProber
	cameraProber CameraProber
	tracker      *Tracker
	generator    *Generator
	dispatcher   AlertDispatcher
	bus          *event.Bus
	logger       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a monitor. minSeverity is the notification threshold.
func New(cfg Config, minSeverity models.Severity, deps Deps) *Monitor {
	return &Monitor{
		cfg:          cfg,
		summaryCfg:   deps.Summary,
		repo:         deps.Repo,
		deviceProber: deps.DeviceProber,
		cameraProber: deps.CameraProber,
		tracker:      NewTracker(deps.Repo, deps.Logger),
		generator:    NewGenerator(minSeverity),
		dispatcher:   deps.Dispatcher,
		bus:          deps.Bus,
		logger:       deps.Logger,
	}
}

// Start launches the polling, maintenance, and summary loops. It returns
// immediately; Stop shuts the loops down and waits for in-flight polls.
func (m *Monitor) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.startLoop("devices", m.cfg.DeviceInterval, m.RunDeviceCycle)
	m.startLoop("cameras", m.cfg.CameraInterval, m.RunCameraCycle)
	m.startLoop("maintenance", m.cfg.MaintenanceInterval, m.runMaintenance)
	if m.summaryCfg.Enabled {
		m.startLoop("summary", m.summaryCfg.Interval, m.runSummary)
	}

	m.logger.Info("monitor started",
		zap.Duration("device_interval", m.cfg.DeviceInterval),
		zap.Duration("camera_interval", m.cfg.CameraInterval),
		zap.Int("max_workers", m.cfg.MaxWorkers),
	)
}

// TriggerAll runs one device cycle and one camera cycle in the
// background on the monitor's lifecycle context, so Stop waits for
// them. It is a no-op before Start or after Stop.
func (m *Monitor) TriggerAll() {
	if m.ctx == nil || m.ctx.Err() != nil {
		return
	}
	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.RunDeviceCycle(m.ctx)
	}()
	go func() {
		defer m.wg.Done()
		m.RunCameraCycle(m.ctx)
	}()
}

// Stop signals all loops to stop and waits for completion.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.logger.Info("monitor stopped")
}

// startLoop runs fn immediately, then on every tick. Ticks are consumed
// only after fn returns, so two runs of the same loop never overlap.
func (m *Monitor) startLoop(name string, interval time.Duration, fn func(ctx context.Context)) {
	if interval <= 0 {
		interval = time.Minute
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(m.ctx)

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				fn(m.ctx)
			}
		}
	}()
	m.logger.Debug("loop started", zap.String("loop", name), zap.Duration("interval", interval))
}

// RunDeviceCycle polls every device once through the worker pool.
func (m *Monitor) RunDeviceCycle(ctx context.Context) {
	start := time.Now()
	devices, err := m.repo.ListDevices(ctx)
	if err != nil {
		m.logger.Warn("device cycle: failed to list devices", zap.Error(err))
		return
	}
	if len(devices) == 0 {
		return
	}

	m.forEach(ctx, len(devices), func(ctx context.Context, i int) {
		m.pollDevice(ctx, devices[i])
	})

	cycleDuration.WithLabelValues("device").Observe(time.Since(start).Seconds())
	m.logger.Debug("device cycle complete",
		zap.Int("count", len(devices)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// RunCameraCycle polls every camera once through the worker pool.
func (m *Monitor) RunCameraCycle(ctx context.Context) {
	start := time.Now()
	cameras, err := m.repo.ListCameras(ctx)
	if err != nil {
		m.logger.Warn("camera cycle: failed to list cameras", zap.Error(err))
		return
	}
	if len(cameras) == 0 {
		return
	}

	m.forEach(ctx, len(cameras), func(ctx context.Context, i int) {
		m.pollCamera(ctx, cameras[i])
	})

	cycleDuration.WithLabelValues("camera").Observe(time.Since(start).Seconds())
	m.logger.Debug("camera cycle complete",
		zap.Int("count", len(cameras)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// forEach dispatches n tasks to a semaphore-bounded worker pool and
// waits for all of them. A panic or slow probe in one task never stalls
// the rest beyond the pool bound.
func (m *Monitor) forEach(ctx context.Context, n int, task func(ctx context.Context, i int)) {
	workers := m.cfg.MaxWorkers
	if workers <= 0 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

dispatch:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("poll panicked", zap.Any("panic", r))
				}
			}()
			task(ctx, i)
		}(i)
	}

	wg.Wait()
}
