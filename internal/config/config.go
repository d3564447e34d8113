package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the refund service
type Config struct {
	AppName       string              `mapstructure:"app_name"`
	Server        ServerConfig        `mapstructure:"server"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	PolicyService PolicyServiceConfig `mapstructure:"policy_service"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Refund        RefundConfig        `mapstructure:"refund"`
	Log           LogConfig           `mapstructure:"log"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// MetricsConfig holds Prometheus metrics server configuration
type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

// PolicyServiceConfig holds the upstream refund policy service configuration
type PolicyServiceConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// RedisConfig holds Redis configuration for the policy cache
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// KafkaConfig holds Kafka configuration for refund submission events
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	Enabled bool     `mapstructure:"enabled"`
}

// RefundConfig holds the refund calculation terms
type RefundConfig struct {
	FeeRate            float64       `mapstructure:"fee_rate"`
	FeeFloor           float64       `mapstructure:"fee_floor"`
	ProcessingEstimate string        `mapstructure:"processing_estimate"`
	RefreshInterval    time.Duration `mapstructure:"refresh_interval"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TracingConfig holds OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SamplingRatio  float64 `mapstructure:"sampling_ratio"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app_name", "refund-service")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("policy_service.base_url", "http://localhost:8081")
	viper.SetDefault("policy_service.timeout", 10*time.Second)
	viper.SetDefault("policy_service.cache_ttl", 15*time.Minute)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "refund.requested")
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("refund.fee_rate", 0.05)
	viper.SetDefault("refund.fee_floor", 0.01)
	viper.SetDefault("refund.processing_estimate", "2-4 hours")
	viper.SetDefault("refund.refresh_interval", 60*time.Second)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	viper.SetDefault("tracing.sampling_ratio", 1.0)
}

// GetRedisAddr returns the Redis connection address
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
