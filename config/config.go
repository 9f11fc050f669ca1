package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Worker    WorkerConfig    `yaml:"worker"`
	Payment   PaymentConfig   `yaml:"payment"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"ssl_mode"`
	MaxConns    int32  `yaml:"max_conns"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	OrderEventsTopic   string   `yaml:"order_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	Expiry          time.Duration     `yaml:"expiry"`
	FlightsCacheTTL time.Duration     `yaml:"flights_cache_ttl"`
	Prices          map[string]string `yaml:"prices"`
}

type WorkerConfig struct {
	ExpirationSweep time.Duration `yaml:"expiration_sweep"`
	SweepBatchSize  int           `yaml:"sweep_batch_size"`
}

type PaymentConfig struct {
	WebhookSecret   string        `yaml:"webhook_secret"`
	SignatureHeader string        `yaml:"signature_header"`
	Tolerance       time.Duration `yaml:"tolerance"`
	EventTTL        time.Duration `yaml:"event_ttl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

const (
	SchedulerTimer    = "timer"
	SchedulerTemporal = "temporal"
)

type SchedulerConfig struct {
	Driver            string `yaml:"driver"`
	TemporalHost      string `yaml:"temporal_host"`
	TemporalNamespace string `yaml:"temporal_namespace"`
	TaskQueue         string `yaml:"task_queue"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Debug bool   `yaml:"debug"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Booking.Expiry == 0 {
		c.Booking.Expiry = 15 * time.Minute
	}
	if c.Booking.FlightsCacheTTL == 0 {
		c.Booking.FlightsCacheTTL = 30 * time.Second
	}
	if c.Worker.ExpirationSweep == 0 {
		c.Worker.ExpirationSweep = time.Minute
	}
	if c.Worker.SweepBatchSize == 0 {
		c.Worker.SweepBatchSize = 100
	}
	if c.Payment.SignatureHeader == "" {
		c.Payment.SignatureHeader = "Payment-Signature"
	}
	if c.Payment.Tolerance == 0 {
		c.Payment.Tolerance = 5 * time.Minute
	}
	if c.Payment.EventTTL == 0 {
		c.Payment.EventTTL = 24 * time.Hour
	}
	if c.Scheduler.Driver == "" {
		c.Scheduler.Driver = SchedulerTimer
	}
	if c.Scheduler.TemporalNamespace == "" {
		c.Scheduler.TemporalNamespace = "default"
	}
	if c.Scheduler.TaskQueue == "" {
		c.Scheduler.TaskQueue = "order-expiry"
	}
	if c.Log.Path == "" {
		c.Log.Path = "logs/"
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Scheduler.Driver {
	case SchedulerTimer:
	case SchedulerTemporal:
		if c.Scheduler.TemporalHost == "" {
			return errors.New("scheduler.temporal_host is required for the temporal driver")
		}
	default:
		return fmt.Errorf("unknown scheduler driver %q", c.Scheduler.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Booking.Expiry < 0 {
		return errors.New("booking.expiry must be positive")
	}
	return nil
}
