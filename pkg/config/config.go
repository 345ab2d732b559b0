package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	Enrollment  EnrollmentConfig
	Eligibility EligibilityConfig
	Sweep       SweepConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EnrollmentConfig holds the default enrollment policy. Values here are
// fallbacks; rows in the settings table override them at runtime.
type EnrollmentConfig struct {
	FreshmanUnitCap     float64
	CapAppliesToAll     bool
	GeneralUnitCap      float64
	DefaultPassingGrade float64
}

// EligibilityConfig tunes caching of subject-availability listings.
type EligibilityConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// SweepConfig drives the incomplete-grade lifecycle sweep.
type SweepConfig struct {
	Enabled     bool
	Schedule    string
	MajorExpiry time.Duration
	MinorExpiry time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Enrollment = EnrollmentConfig{
		FreshmanUnitCap:     v.GetFloat64("ENROLLMENT_FRESHMAN_UNIT_CAP"),
		CapAppliesToAll:     v.GetBool("ENROLLMENT_CAP_APPLIES_TO_ALL"),
		GeneralUnitCap:      v.GetFloat64("ENROLLMENT_GENERAL_UNIT_CAP"),
		DefaultPassingGrade: v.GetFloat64("ENROLLMENT_DEFAULT_PASSING_GRADE"),
	}

	cfg.Eligibility = EligibilityConfig{
		CacheEnabled: v.GetBool("ELIGIBILITY_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("ELIGIBILITY_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Sweep = SweepConfig{
		Enabled:     v.GetBool("SWEEP_ENABLED"),
		Schedule:    v.GetString("SWEEP_SCHEDULE"),
		MajorExpiry: parseDuration(v.GetString("SWEEP_MAJOR_EXPIRY"), 6*30*24*time.Hour),
		MinorExpiry: parseDuration(v.GetString("SWEEP_MINOR_EXPIRY"), 12*30*24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "registrar_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENROLLMENT_FRESHMAN_UNIT_CAP", 30.0)
	v.SetDefault("ENROLLMENT_CAP_APPLIES_TO_ALL", false)
	v.SetDefault("ENROLLMENT_GENERAL_UNIT_CAP", 0.0)
	v.SetDefault("ENROLLMENT_DEFAULT_PASSING_GRADE", 2.0)

	v.SetDefault("ELIGIBILITY_CACHE_ENABLED", true)
	v.SetDefault("ELIGIBILITY_CACHE_TTL", "2m")

	// Seconds-precision cron spec, nightly at 03:00.
	v.SetDefault("SWEEP_ENABLED", true)
	v.SetDefault("SWEEP_SCHEDULE", "0 0 3 * * *")
	v.SetDefault("SWEEP_MAJOR_EXPIRY", "4320h")
	v.SetDefault("SWEEP_MINOR_EXPIRY", "8640h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
