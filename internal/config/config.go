package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/database"
	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Processing ProcessingConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// ProcessingConfig holds the punch processing loop settings
type ProcessingConfig struct {
	ProcessID        string
	Interval         time.Duration
	Workers          int
	LeaseTTL         time.Duration
	FinalizeInterval time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "5"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "attendance-engine"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Processing configuration
	interval, err := time.ParseDuration(getEnv("PROCESS_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROCESS_INTERVAL: %w", err)
	}
	workers, err := strconv.Atoi(getEnv("PROCESS_WORKERS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROCESS_WORKERS: %w", err)
	}
	leaseTTL, err := time.ParseDuration(getEnv("PROCESS_LEASE_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROCESS_LEASE_TTL: %w", err)
	}
	finalizeInterval, err := time.ParseDuration(getEnv("FINALIZE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid FINALIZE_INTERVAL: %w", err)
	}

	config.Processing = ProcessingConfig{
		ProcessID:        getEnv("PROCESS_ID", "attendance-incremental"),
		Interval:         interval,
		Workers:          workers,
		LeaseTTL:         leaseTTL,
		FinalizeInterval: finalizeInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is not a known location: %w", err)
	}
	if c.Processing.ProcessID == "" {
		return fmt.Errorf("PROCESS_ID is required")
	}
	if c.Processing.Workers <= 0 {
		return fmt.Errorf("PROCESS_WORKERS must be positive")
	}
	if c.Processing.Interval <= 0 {
		return fmt.Errorf("PROCESS_INTERVAL must be positive")
	}
	if c.Processing.LeaseTTL <= 0 {
		return fmt.Errorf("PROCESS_LEASE_TTL must be positive")
	}
	if c.Processing.FinalizeInterval <= 0 {
		return fmt.Errorf("FINALIZE_INTERVAL must be positive")
	}
	return nil
}

// Location returns the zone in which calendar dates are truncated
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PoolOptions returns the pool sizing for database.NewPostgreSQLDB
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MaxConns: c.Database.MaxConns,
		MinConns: c.Database.MinConns,
	}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
