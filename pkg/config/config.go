package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment override, e.g. VIDSHELF_SERVER__PORT.
const EnvPrefix = "VIDSHELF_"

// ConfigPathEnvVar overrides the YAML config file location
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml", "/etc/vidshelf/config.yaml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Auth     AuthConfig     `koanf:"auth"`
	Firebase FirebaseConfig `koanf:"firebase"`
	YouTube  YouTubeConfig  `koanf:"youtube"`
	Activity ActivityConfig `koanf:"activity"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Port        string `koanf:"port" validate:"required,numeric"`
	Env         string `koanf:"env" validate:"oneof=development staging production test"`
	PublicURL   string `koanf:"public_url" validate:"required,url"`
	MetricsPath string `koanf:"metrics_path" validate:"required,startswith=/"`
}

type DatabaseConfig struct {
	PostgresDSN   string `koanf:"postgres_dsn"`
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database" validate:"required"`
}

// RedisConfig is optional; an empty URL disables the unread-count cache.
type RedisConfig struct {
	URL      string        `koanf:"url"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"min=0"`
}

// KafkaConfig is optional; without brokers neither the consumer nor the producer starts.
type KafkaConfig struct {
	Brokers            []string `koanf:"brokers"`
	EventsTopic        string   `koanf:"events_topic"`
	NotificationsTopic string   `koanf:"notifications_topic"`
	GroupID            string   `koanf:"group_id"`
	Username           string   `koanf:"username"`
	Password           string   `koanf:"password"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=8"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"gt=0"`
	Provider  string        `koanf:"provider" validate:"oneof=jwt firebase"`
}

type FirebaseConfig struct {
	CredentialsPath string `koanf:"credentials_path"`
	PushEnabled     bool   `koanf:"push_enabled"`
}

type YouTubeConfig struct {
	APIKey string `koanf:"api_key"`
}

type ActivityConfig struct {
	AggregationWindow time.Duration `koanf:"aggregation_window" validate:"gt=0"`
	MaxMergeAttempts  int           `koanf:"max_merge_attempts" validate:"min=1,max=20"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Env:         "development",
			PublicURL:   "http://localhost:8080",
			MetricsPath: "/metrics",
		},
		Database: DatabaseConfig{
			MongoDatabase: "vidshelf",
		},
		Redis: RedisConfig{
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			EventsTopic:        "vidshelf.domain-events",
			NotificationsTopic: "vidshelf.notifications",
			GroupID:            "vidshelf-activity",
		},
		Auth: AuthConfig{
			JWTSecret: "supersecretjwtkey",
			TokenTTL:  72 * time.Hour,
			Provider:  "jwt",
		},
		Activity: ActivityConfig{
			AggregationWindow: 6 * time.Hour,
			MaxMergeAttempts:  5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var sliceConfigPaths = []string{"kafka.brokers"}

// Load builds the configuration from defaults, an optional YAML file, .env and the environment.
func Load() (*Config, error) {
	// .env is a convenience for local runs; real deployments set variables directly.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags on every section
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// envKey maps VIDSHELF_ACTIVITY__AGGREGATION_WINDOW to activity.aggregation_window.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// splitSliceFields turns comma separated env values into string slices
func splitSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
