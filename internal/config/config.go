package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/trainpulse/trainpulse-ai-go/internal/readiness"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Security    SecurityConfig  `mapstructure:"security"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Readiness   ReadinessConfig `mapstructure:"readiness"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	DatabaseURL  string `mapstructure:"database_url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SecurityConfig struct {
	JWTSecret  string `mapstructure:"jwt_secret" json:"-" yaml:"-"`
	JWTExpiry  string `mapstructure:"jwt_expiry"`
	BcryptCost int    `mapstructure:"bcrypt_cost"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// ReadinessConfig carries the factor weights used for daily readiness
// scoring plus the TTL for the per-user baseline cache. Weights default to
// the engine's stock values and must stay non-negative and sum to 1.0.
type ReadinessConfig struct {
	HRVTrendWeight       float64 `mapstructure:"hrv_trend_weight"`
	RestingHRTrendWeight float64 `mapstructure:"resting_hr_trend_weight"`
	SleepDurationWeight  float64 `mapstructure:"sleep_duration_weight"`
	SleepQualityWeight   float64 `mapstructure:"sleep_quality_weight"`
	SorenessWeight       float64 `mapstructure:"soreness_weight"`
	StressWeight         float64 `mapstructure:"stress_weight"`
	BaselineCacheTTL     string  `mapstructure:"baseline_cache_ttl"`
}

// Weights converts the configured values into engine weights.
func (rc ReadinessConfig) Weights() readiness.Weights {
	return readiness.Weights{
		HRVTrend:       rc.HRVTrendWeight,
		RestingHRTrend: rc.RestingHRTrendWeight,
		SleepDuration:  rc.SleepDurationWeight,
		SleepQuality:   rc.SleepQualityWeight,
		Soreness:       rc.SorenessWeight,
		Stress:         rc.StressWeight,
	}
}

// CacheTTL parses the baseline cache TTL, falling back to 24h.
func (rc ReadinessConfig) CacheTTL() time.Duration {
	d, err := time.ParseDuration(rc.BaselineCacheTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("security.jwt_secret", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind JWT_SECRET environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if config.Environment != "development" && config.Security.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required in non-development environments")
	}

	if config.Security.JWTExpiry != "" {
		if _, err := time.ParseDuration(config.Security.JWTExpiry); err != nil {
			return nil, fmt.Errorf("invalid JWT expiry duration: %w", err)
		}
	}

	if config.Security.BcryptCost < bcrypt.MinCost || config.Security.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, config.Security.BcryptCost)
	}

	if err := validateReadinessWeights(config.Readiness); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateReadinessWeights rejects negative weights and weight tables that do
// not sum to 1.0; a bad table would silently skew every score.
func validateReadinessWeights(rc ReadinessConfig) error {
	weights := map[string]float64{
		"hrv_trend_weight":        rc.HRVTrendWeight,
		"resting_hr_trend_weight": rc.RestingHRTrendWeight,
		"sleep_duration_weight":   rc.SleepDurationWeight,
		"sleep_quality_weight":    rc.SleepQualityWeight,
		"soreness_weight":         rc.SorenessWeight,
		"stress_weight":           rc.StressWeight,
	}

	sum := 0.0
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("readiness weight %s must be non-negative, got %f", name, w)
		}
		sum += w
	}

	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("readiness weights must sum to 1.0, got %f", sum)
	}

	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "trainpulse")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Security
	viper.SetDefault("security.jwt_secret", "")
	viper.SetDefault("security.jwt_expiry", "24h")
	viper.SetDefault("security.bcrypt_cost", 12)

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", "")
	viper.SetDefault("telemetry.service_name", "trainpulse-api")

	// Readiness scoring
	defaults := readiness.DefaultWeights()
	viper.SetDefault("readiness.hrv_trend_weight", defaults.HRVTrend)
	viper.SetDefault("readiness.resting_hr_trend_weight", defaults.RestingHRTrend)
	viper.SetDefault("readiness.sleep_duration_weight", defaults.SleepDuration)
	viper.SetDefault("readiness.sleep_quality_weight", defaults.SleepQuality)
	viper.SetDefault("readiness.soreness_weight", defaults.Soreness)
	viper.SetDefault("readiness.stress_weight", defaults.Stress)
	viper.SetDefault("readiness.baseline_cache_ttl", "24h")
}
