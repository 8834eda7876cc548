package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSheets   = "sheets"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App      AppConfig
	Store    StoreConfig
	Google   GoogleConfig
	Database DatabaseConfig
	Sheets   SheetsConfig
	Shift    ShiftConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	Location           *time.Location
	CORSAllowedOrigins []string
}

// StoreConfig selects and bounds the row-store backend.
type StoreConfig struct {
	Driver        string
	Timeout       time.Duration
	RatePerMinute int
}

type GoogleConfig struct {
	SpreadsheetID   string
	Credentials     string
	CredentialsFile string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SheetsConfig names the fixed sheets of the workbook.
type SheetsConfig struct {
	Roster    string
	Dashboard string
	Breaks    string
}

type ShiftConfig struct {
	IndexRebuildInterval time.Duration
	MaxShiftDuration     time.Duration
}

// Load reads the environment once at startup. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	config := &Config{}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Location:           loc,
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// Row-store configuration
	timeout, err := time.ParseDuration(getEnv("STORE_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT: %w", err)
	}
	rate, err := strconv.Atoi(getEnv("STORE_RATE_PER_MINUTE", "240"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_RATE_PER_MINUTE: %w", err)
	}
	config.Store = StoreConfig{
		Driver:        strings.ToLower(getEnv("STORE_DRIVER", DriverSheets)),
		Timeout:       timeout,
		RatePerMinute: rate,
	}

	config.Google = GoogleConfig{
		SpreadsheetID:   getEnv("GOOGLE_SHEETS_ID", ""),
		Credentials:     getEnv("GOOGLE_CREDENTIALS", ""),
		CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeclock"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Sheets = SheetsConfig{
		Roster:    getEnv("SHEET_ROSTER", "Staff Roster"),
		Dashboard: getEnv("SHEET_DASHBOARD", "Dashboard"),
		Breaks:    getEnv("SHEET_BREAKS", "Break Log"),
	}

	// Shift engine configuration
	rebuild, err := time.ParseDuration(getEnv("INDEX_REBUILD_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid INDEX_REBUILD_INTERVAL: %w", err)
	}
	maxHours, err := strconv.ParseFloat(getEnv("MAX_SHIFT_HOURS", "12"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_SHIFT_HOURS: %w", err)
	}
	config.Shift = ShiftConfig{
		IndexRebuildInterval: rebuild,
		MaxShiftDuration:     time.Duration(maxHours * float64(time.Hour)),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSheets:
		if c.Google.SpreadsheetID == "" {
			return fmt.Errorf("GOOGLE_SHEETS_ID is required")
		}
		if c.Google.Credentials == "" && c.Google.CredentialsFile == "" {
			return fmt.Errorf("GOOGLE_CREDENTIALS or GOOGLE_CREDENTIALS_FILE is required")
		}
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s", DriverSheets, DriverPostgres, DriverMemory)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.Store.RatePerMinute < 0 {
		return fmt.Errorf("STORE_RATE_PER_MINUTE must not be negative")
	}
	if c.Shift.IndexRebuildInterval <= 0 {
		return fmt.Errorf("INDEX_REBUILD_INTERVAL must be positive")
	}
	if c.Sheets.Roster == "" || c.Sheets.Dashboard == "" || c.Sheets.Breaks == "" {
		return fmt.Errorf("sheet names must not be empty")
	}
	return nil
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

// SlogLevel maps LOG_LEVEL onto slog; unknown values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
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
