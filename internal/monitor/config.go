package monitor

import "time"

// Config is the monitor section of the runtime configuration.
type Config struct {
	DeviceInterval      time.Duration `mapstructure:"device_interval"`
	CameraInterval      time.Duration `mapstructure:"camera_interval"`
	ProbeTimeout        time.Duration `mapstructure:"probe_timeout"`
	StreamTimeout       time.Duration `mapstructure:"stream_timeout"`
	PingCount           int           `mapstructure:"ping_count"`
	SNMPPort            int           `mapstructure:"snmp_port"`
	MaxWorkers          int           `mapstructure:"max_workers"`
	RetentionPeriod     time.Duration `mapstructure:"retention_period"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
}

// DefaultConfig returns the monitoring defaults.
func DefaultConfig() Config {
	return Config{
		DeviceInterval:      5 * time.Minute,
		CameraInterval:      10 * time.Minute,
		ProbeTimeout:        5 * time.Second,
		StreamTimeout:       5 * time.Second,
		PingCount:           1,
		SNMPPort:            161,
		MaxWorkers:          20,
		RetentionPeriod:     720 * time.Hour,
		MaintenanceInterval: time.Hour,
	}
}
