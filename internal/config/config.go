package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Server              ServerConfig      `toml:"server"`
	Database            DatabaseConfig    `toml:"database"`
	Logs                LogsConfig        `toml:"logs"`
	Metrics             MetricsConfig     `toml:"metrics"`
	Redis               RedisConfig       `toml:"redis"`
	Policy              PolicyConfig      `toml:"policy"`
	UserService         IntegrationConfig `toml:"user_service"`
	NotificationService IntegrationConfig `toml:"notification_service"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
	TTL      int    `toml:"candidate_cache_ttl"` // секунды
}

type PolicyConfig struct {
	ArrivalGraceMinutes       int  `toml:"arrival_grace_minutes"`
	PendingHoldMinutes        int  `toml:"pending_hold_minutes"`
	BookingBufferMinutes      int  `toml:"booking_buffer_minutes"`
	DefaultSearchRadiusMeters int  `toml:"default_search_radius_meters"`
	FreeSlotSampleSize        int  `toml:"free_slot_sample_size"`
	MaxTransitionAttempts     int  `toml:"max_transition_attempts"`
	AutoConfirm               bool `toml:"auto_confirm"`
	BookingClockSkewMinutes   int  `toml:"booking_clock_skew_minutes"`
}

// Domain глобальная политика удержания мест
func (p PolicyConfig) Domain() domain.Policy {
	return domain.Policy{
		ArrivalGrace:  time.Duration(p.ArrivalGraceMinutes) * time.Minute,
		PendingHold:   time.Duration(p.PendingHoldMinutes) * time.Minute,
		BookingBuffer: time.Duration(p.BookingBufferMinutes) * time.Minute,
	}
}

// ClockSkew допустимое отставание начала предварительной брони от текущего времени
func (p PolicyConfig) ClockSkew() time.Duration {
	return time.Duration(p.BookingClockSkewMinutes) * time.Minute
}

type IntegrationConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// Load читает TOML, затем переменные окружения (и .env рядом с бинарником)
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	// .env необязателен
	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "parking-service",
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "parking:",
			TTL:    30,
		},
		Policy: PolicyConfig{
			ArrivalGraceMinutes:       int(domain.DefaultArrivalGrace / time.Minute),
			PendingHoldMinutes:        int(domain.DefaultPendingHold / time.Minute),
			BookingBufferMinutes:      int(domain.DefaultBookingBuffer / time.Minute),
			DefaultSearchRadiusMeters: domain.DefaultSearchRadiusMeters,
			FreeSlotSampleSize:        domain.DefaultFreeSlotSampleSize,
			MaxTransitionAttempts:     domain.DefaultTransitionAttempts,
			AutoConfirm:               true,
			BookingClockSkewMinutes:   int(domain.DefaultBookingClockSkew / time.Minute),
		},
		UserService:         IntegrationConfig{Timeout: 5},
		NotificationService: IntegrationConfig{Timeout: 5},
	}
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("DB_PASSWORD"); ok {
		c.Database.Password = v
	}
	if v, ok := os.LookupEnv("DB_HOST"); ok {
		c.Database.Host = v
	}
	if v, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := os.LookupEnv("HTTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HTTP_PORT=%q is not a number", ErrInvalidConfig, v)
		}
		c.Server.HTTPPort = port
	}
	return nil
}

// Validate проверяет значения, без которых сервис не может стартовать
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("%w: database.port=%d", ErrInvalidConfig, c.Database.Port)
	}

	p := c.Policy
	if p.ArrivalGraceMinutes < 0 || p.PendingHoldMinutes < 0 || p.BookingBufferMinutes < 0 || p.BookingClockSkewMinutes < 0 {
		return fmt.Errorf("%w: policy windows must not be negative", ErrInvalidConfig)
	}
	if p.DefaultSearchRadiusMeters <= 0 {
		return fmt.Errorf("%w: policy.default_search_radius_meters=%d", ErrInvalidConfig, p.DefaultSearchRadiusMeters)
	}
	if p.FreeSlotSampleSize <= 0 {
		return fmt.Errorf("%w: policy.free_slot_sample_size=%d", ErrInvalidConfig, p.FreeSlotSampleSize)
	}
	if p.MaxTransitionAttempts <= 0 {
		return fmt.Errorf("%w: policy.max_transition_attempts=%d", ErrInvalidConfig, p.MaxTransitionAttempts)
	}

	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return fmt.Errorf("%w: redis.candidate_cache_ttl=%d", ErrInvalidConfig, c.Redis.TTL)
	}
	if c.UserService.Enabled && c.UserService.URL == "" {
		return fmt.Errorf("%w: user_service.url is empty", ErrInvalidConfig)
	}
	if c.NotificationService.Enabled && c.NotificationService.URL == "" {
		return fmt.Errorf("%w: notification_service.url is empty", ErrInvalidConfig)
	}
	return nil
}
