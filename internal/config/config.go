// Package config loads SiteWatch configuration from file and environment
// and builds the application logger.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the given file (or the default search
// locations when path is empty) and from SITEWATCH_* environment variables.
func Load(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/sitewatch.db")

	v.SetDefault("monitor.device_interval", "5m")
	v.SetDefault("monitor.camera_interval", "10m")
	v.SetDefault("monitor.probe_timeout", "5s")
	v.SetDefault("monitor.stream_timeout", "5s")
	v.SetDefault("monitor.ping_count", 1)
	v.SetDefault("monitor.snmp_port", 161)
	v.SetDefault("monitor.max_workers", 20)
	v.SetDefault("monitor.retention_period", "720h")
	v.SetDefault("monitor.maintenance_interval", "1h")

	v.SetDefault("notifications.min_severity", "high")
	v.SetDefault("notifications.timeout", "10s")
	v.SetDefault("summary.enabled", false)
	v.SetDefault("summary.interval", "24h")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sitewatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/sitewatch")
	}

	v.SetEnvPrefix("SITEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return v, nil
}
