package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. SEATLEDGER_PAYMENT_SERVER_KEY.
const EnvPrefix = "SEATLEDGER"

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Payment  PaymentConfig  `yaml:"payment"`
	Auth     AuthConfig     `yaml:"auth"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerFile    string   `yaml:"swagger_file" split_words:"true"`
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true"`
	MaxConns int32  `yaml:"max_conns" split_words:"true"`
}

func (d DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	if d.MaxConns > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.MaxConns)
	}
	return dsn
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	TicketEventsTopic  string   `yaml:"ticket_events_topic" split_words:"true"`
	NotificationsTopic string   `yaml:"notifications_topic" split_words:"true"`
	AlertsTopic        string   `yaml:"alerts_topic" split_words:"true"`
	GroupID            string   `yaml:"group_id" split_words:"true"`
}

type PaymentConfig struct {
	BaseURL          string `yaml:"base_url" split_words:"true"`
	ServerKey        string `yaml:"server_key" split_words:"true"`
	NotifySecret     string `yaml:"notify_secret" split_words:"true"`
	TimeoutSeconds   int    `yaml:"timeout_seconds" split_words:"true"`
	BreakerThreshold int64  `yaml:"breaker_threshold" split_words:"true"`
	SessionTTL       int    `yaml:"session_ttl_minutes" split_words:"true"`
}

func (p PaymentConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" envconfig:"JWT_SECRET"`
	Issuer    string `yaml:"issuer"`
}

type BookingConfig struct {
	HoldTTLMinutes  int `yaml:"hold_ttl_minutes" split_words:"true"`
	FlightsCacheTTL int `yaml:"flights_cache_ttl_seconds" envconfig:"FLIGHTS_CACHE_TTL_SECONDS"`
}

type WorkerConfig struct {
	PurgeSchedule       string `yaml:"purge_schedule" split_words:"true"`
	PurgeBatch          int    `yaml:"purge_batch" split_words:"true"`
	FailedRetentionDays int    `yaml:"failed_retention_days" split_words:"true"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads the YAML file at path and then applies SEATLEDGER_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply env overrides: %w", err)
	}

	return &cfg, nil
}
