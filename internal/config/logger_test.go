package config

import (
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "info")
	v.Set("logging.format", "json")

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
	_ = logger.Sync()
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "debug")
	v.Set("logging.format", "console")

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger == nil {
		t.Fatal("NewLogger() returned nil logger")
	}
}

func TestNewLogger_LevelGate(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "warn")
	v.Set("logging.format", "json")

	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info enabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error not enabled at warn level")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "loud")

	if _, err := NewLogger(v); err == nil {
		t.Error("NewLogger() error = nil, want error for invalid level")
	}
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "info")
	v.Set("logging.format", "xml")

	if _, err := NewLogger(v); err == nil {
		t.Error("NewLogger() error = nil, want error for invalid format")
	}
}

func TestLoad_Defaults(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := v.GetString("monitor.device_interval"); got != "5m" {
		t.Errorf("monitor.device_interval = %q, want %q", got, "5m")
	}
	if got := v.GetInt("monitor.max_workers"); got != 20 {
		t.Errorf("monitor.max_workers = %d, want 20", got)
	}
	if got := v.GetString("notifications.min_severity"); got != "high" {
		t.Errorf("notifications.min_severity = %q, want %q", got, "high")
	}
}
