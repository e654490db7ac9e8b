package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            int `yaml:"port"`
		HealthCheckPort int `yaml:"health_check_port"`
		ShutdownSeconds int `yaml:"shutdown_seconds"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		TTLSeconds             int `yaml:"ttl_seconds"`
		RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
	} `yaml:"cache"`

	Monitoring struct {
		PrometheusEnabled bool   `yaml:"prometheus_enabled"`
		PrometheusPort    int    `yaml:"prometheus_port"`
		Namespace         string `yaml:"namespace"`
	} `yaml:"monitoring"`

	Booking struct {
		BusinessOpen        string  `yaml:"business_open"`  // HH:MM
		BusinessClose       string  `yaml:"business_close"` // HH:MM
		SlotIntervalMinutes int     `yaml:"slot_interval_minutes"`
		LeadTimeMinutes     int     `yaml:"lead_time_minutes"`
		RateLimitPerSecond  float64 `yaml:"rate_limit_per_second"`
		RateLimitBurst      int     `yaml:"rate_limit_burst"`
		ReminderHour        int     `yaml:"reminder_hour"` // local hour for daily reminders
	} `yaml:"booking"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.HealthCheckPort == 0 {
		c.Server.HealthCheckPort = 8090
	}
	if c.Server.ShutdownSeconds == 0 {
		c.Server.ShutdownSeconds = 5
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/glowsalon.db"
	}
	if c.Backup.IntervalHours <= 0 {
		c.Backup.IntervalHours = 24
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "data/backups"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 60
	}
	if c.Cache.RefreshIntervalSeconds == 0 {
		c.Cache.RefreshIntervalSeconds = 30
	}
	if c.Monitoring.Namespace == "" {
		c.Monitoring.Namespace = "glowsalon"
	}
	if c.Booking.BusinessOpen == "" {
		c.Booking.BusinessOpen = "09:00"
	}
	if c.Booking.BusinessClose == "" {
		c.Booking.BusinessClose = "22:00"
	}
	if c.Booking.SlotIntervalMinutes <= 0 {
		c.Booking.SlotIntervalMinutes = 15
	}
	if c.Booking.LeadTimeMinutes <= 0 {
		c.Booking.LeadTimeMinutes = 120
	}
	if c.Booking.RateLimitPerSecond <= 0 {
		c.Booking.RateLimitPerSecond = 10
	}
	if c.Booking.RateLimitBurst <= 0 {
		c.Booking.RateLimitBurst = 20
	}
	if c.Booking.ReminderHour <= 0 {
		c.Booking.ReminderHour = 9
	}
}

func (c *Config) LeadTime() time.Duration {
	return time.Duration(c.Booking.LeadTimeMinutes) * time.Minute
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Cache.RefreshIntervalSeconds) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownSeconds) * time.Second
}
