package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logger   LoggerConfig   `yaml:"logger"`
	Board    BoardConfig    `yaml:"board"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	Isolation       string        `yaml:"isolation"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// GetDSN returns the explicit DSN if set, otherwise builds one for the configured driver
func (d DatabaseConfig) GetDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "sqlite" {
		return "file:taskflow.db?_busy_timeout=5000"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// Addr returns host:port for the redis server
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type BoardConfig struct {
	MoveTimeout       time.Duration `yaml:"move_timeout"`
	MoveRetries       int           `yaml:"move_retries"`
	ActivityFeedLimit int           `yaml:"activity_feed_limit"`
}

type RealtimeConfig struct {
	SendBuffer          int           `yaml:"send_buffer"`
	WriteWait           time.Duration `yaml:"write_wait"`
	PongWait            time.Duration `yaml:"pong_wait"`
	MaxMessageSize      int64         `yaml:"max_message_size"`
	BreakerMaxFailures  int           `yaml:"breaker_max_failures"`
	BreakerOpenTimeout  time.Duration `yaml:"breaker_open_timeout"`
	RelayReconnectDelay time.Duration `yaml:"relay_reconnect_delay"`
}

type JobsConfig struct {
	CompactionEnabled  bool          `yaml:"compaction_enabled"`
	CompactionSchedule string        `yaml:"compaction_schedule"`
	MetricsInterval    time.Duration `yaml:"metrics_interval"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Mode:            "debug",
			BasePath:        "/api",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			Host:            "localhost",
			Port:            5432,
			User:            "taskflow",
			Name:            "taskflow",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			Isolation:       "serializable",
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			Host:          "localhost",
			Port:          6379,
			ChannelPrefix: "taskflow:board:",
		},
		Logger: LoggerConfig{Level: "info"},
		Board: BoardConfig{
			MoveTimeout:       5 * time.Second,
			MoveRetries:       3,
			ActivityFeedLimit: 50,
		},
		Realtime: RealtimeConfig{
			SendBuffer:          256,
			WriteWait:           10 * time.Second,
			PongWait:            60 * time.Second,
			MaxMessageSize:      8192,
			BreakerMaxFailures:  5,
			BreakerOpenTimeout:  30 * time.Second,
			RelayReconnectDelay: 2 * time.Second,
		},
		Jobs: JobsConfig{
			CompactionEnabled:  false,
			CompactionSchedule: "0 */10 * * * *",
			MetricsInterval:    60 * time.Second,
		},
		Tracing: TracingConfig{
			ServiceName: "taskflow-board-api",
			Exporter:    "stdout",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Database.Isolation {
	case "", "default", "read_committed", "repeatable_read", "serializable":
	default:
		return fmt.Errorf("unsupported isolation level %q", c.Database.Isolation)
	}
	if c.Board.MoveTimeout <= 0 {
		return fmt.Errorf("board.move_timeout must be positive")
	}
	if c.Board.MoveRetries < 0 {
		return fmt.Errorf("board.move_retries must not be negative")
	}
	if c.Realtime.SendBuffer <= 0 {
		return fmt.Errorf("realtime.send_buffer must be positive")
	}
	return nil
}

// Override with environment variables
func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if basePath := os.Getenv("SERVER_BASE_PATH"); basePath != "" {
		cfg.Server.BasePath = basePath
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Database.Driver = driver
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.DSN = dbURL
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Database.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if isolation := os.Getenv("DB_ISOLATION"); isolation != "" {
		cfg.Database.Isolation = isolation
	}
	if autoMigrate := os.Getenv("DB_AUTO_MIGRATE"); autoMigrate != "" {
		if b, err := strconv.ParseBool(autoMigrate); err == nil {
			cfg.Database.AutoMigrate = b
		}
	}
	if enabled := os.Getenv("REDIS_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.Redis.Enabled = b
		}
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		cfg.Redis.Host = redisHost
	}
	if redisPort := os.Getenv("REDIS_PORT"); redisPort != "" {
		if p, err := strconv.Atoi(redisPort); err == nil {
			cfg.Redis.Port = p
		}
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
	if timeout := os.Getenv("MOVE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Board.MoveTimeout = d
		}
	}
	if retries := os.Getenv("MOVE_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil {
			cfg.Board.MoveRetries = n
		}
	}
	if compaction := os.Getenv("JOBS_COMPACTION_ENABLED"); compaction != "" {
		if b, err := strconv.ParseBool(compaction); err == nil {
			cfg.Jobs.CompactionEnabled = b
		}
	}
	if tracing := os.Getenv("TRACING_ENABLED"); tracing != "" {
		if b, err := strconv.ParseBool(tracing); err == nil {
			cfg.Tracing.Enabled = b
		}
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Tracing.Endpoint = endpoint
		cfg.Tracing.Exporter = "otlp"
	}
}
