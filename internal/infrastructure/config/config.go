package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	PolicyTTL time.Duration `mapstructure:"policy_ttl"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	PublicKeyFile string `mapstructure:"public_key_file"`
	Issuer        string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TLSConfig struct {
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
	CAFile   string `mapstructure:"ca_file"`
}

type Config struct {
	Environment  string         `mapstructure:"environment"`
	ServiceName  string         `mapstructure:"service_name"`
	GRPCPort     int            `mapstructure:"grpc_port"`
	HTTPPort     int            `mapstructure:"http_port"`
	OTLPEndpoint string         `mapstructure:"otlp_endpoint"`
	PolicyDir    string         `mapstructure:"policy_dir"`
	Reflection   bool           `mapstructure:"grpc_reflection"`
	DB           DatabaseConfig `mapstructure:"db"`
	Redis        RedisConfig    `mapstructure:"redis"`
	Kafka        KafkaConfig    `mapstructure:"kafka"`
	Auth         AuthConfig     `mapstructure:"auth"`
	Log          LogConfig      `mapstructure:"log"`
	TLS          TLSConfig      `mapstructure:"tls"`
}

// Load reads configuration from defaults, an optional config.yaml in the
// working directory or ./configs, and the environment. A .env file is
// loaded first when present. Nested keys map to env vars with underscores,
// so db.password is DB_PASSWORD.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	// Env vars arrive as one comma separated string.
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("service_name", "decision-engine")
	v.SetDefault("grpc_port", 9090)
	v.SetDefault("http_port", 8080)
	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("policy_dir", "")
	v.SetDefault("grpc_reflection", false)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "credit")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "credit_decisions")
	v.SetDefault("db.sslmode", "require")
	v.SetDefault("db.max_conns", 10)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.policy_ttl", 5*time.Minute)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "credit.decision-events")
	v.SetDefault("kafka.poll_interval", 2*time.Second)
	v.SetDefault("kafka.batch_size", 100)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.public_key_file", "")
	v.SetDefault("auth.issuer", "credit-score")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.ca_file", "")
}

// Validate rejects configurations the service cannot safely start with.
func (c Config) Validate() error {
	if c.GRPCPort <= 0 || c.HTTPPort <= 0 {
		return fmt.Errorf("config: grpc_port and http_port must be positive")
	}
	if c.Redis.PolicyTTL < 0 {
		return fmt.Errorf("config: redis.policy_ttl must not be negative")
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("config: kafka.topic is required")
	}
	if c.IsDevelopment() {
		return nil
	}
	if c.DB.Password == "" {
		return fmt.Errorf("config: DB_PASSWORD is required outside development")
	}
	if c.Auth.JWTSecret == "" && c.Auth.PublicKeyFile == "" {
		return fmt.Errorf("config: AUTH_JWT_SECRET or AUTH_PUBLIC_KEY_FILE is required outside development")
	}
	return nil
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// TLSEnabled reports whether both a certificate and a key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLS.CertFile != "" && c.TLS.KeyFile != ""
}

func (c Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
