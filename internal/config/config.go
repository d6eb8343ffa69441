package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из TOML файла
type Config struct {
	Server              ServerConfig      `toml:"server"`
	Database            DatabaseConfig    `toml:"database"`
	Logs                LogsConfig        `toml:"logs"`
	Metrics             MetricsConfig     `toml:"metrics"`
	Kafka               KafkaConfig       `toml:"kafka"`
	PaymentService      IntegrationConfig `toml:"payment_service"`
	NotificationService IntegrationConfig `toml:"notification_service"`
	ChatService         IntegrationConfig `toml:"chat_service"`
	Booking             BookingConfig     `toml:"booking"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// KafkaConfig настройки публикации событий бронирований
type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

// IntegrationConfig настройки HTTP клиента внешнего сервиса
type IntegrationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// BookingConfig бизнес-параметры ядра бронирования
type BookingConfig struct {
	// Region IANA таймзона операционного региона (ценовые коэффициенты
	// считаются по локальному календарю исполнителя)
	Region string `toml:"region"`

	PlatformFeeRate float64 `toml:"platform_fee_rate"`
	TaxRate         float64 `toml:"tax_rate"`

	LockTTLMinutes      int `toml:"lock_ttl_minutes"`
	LockSweepSeconds    int `toml:"lock_sweep_seconds"`
	ReversalMaxAttempts int `toml:"reversal_max_attempts"`
	ReversalPollSeconds int `toml:"reversal_poll_seconds"`
	ReversalBackoffBase int `toml:"reversal_backoff_base_seconds"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "booking-core"
	}
	if cfg.Booking.Region == "" {
		cfg.Booking.Region = "UTC"
	}
	if cfg.Booking.LockTTLMinutes == 0 {
		cfg.Booking.LockTTLMinutes = 7
	}
	if cfg.Booking.LockSweepSeconds == 0 {
		cfg.Booking.LockSweepSeconds = 60
	}
	if cfg.Booking.ReversalMaxAttempts == 0 {
		cfg.Booking.ReversalMaxAttempts = 8
	}
	if cfg.Booking.ReversalPollSeconds == 0 {
		cfg.Booking.ReversalPollSeconds = 15
	}
	if cfg.Booking.ReversalBackoffBase == 0 {
		cfg.Booking.ReversalBackoffBase = 30
	}
}
