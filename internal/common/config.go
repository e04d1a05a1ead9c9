package common

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	OCR      OCRConfig      `yaml:"ocr"`
	Intake   IntakeConfig   `yaml:"intake"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
	ExportSheet   string `yaml:"export_sheet"`
	EnableWatcher bool   `yaml:"enable_watcher"`
}

// OCRConfig holds recognition-related configuration
type OCRConfig struct {
	Tesseract        string        `yaml:"tesseract"`
	TesseractLang    string        `yaml:"tesseract_lang"`
	TessdataDir      string        `yaml:"tessdata_dir"`
	PSM              int           `yaml:"psm"`
	OEM              int           `yaml:"oem"`
	RecognizeTimeout time.Duration `yaml:"recognize_timeout"`
}

// IntakeConfig holds directory-ingest configuration
type IntakeConfig struct {
	InboxDir        string        `yaml:"inbox_dir"`
	DefaultClientID string        `yaml:"default_client_id"`
	InitialScan     bool          `yaml:"initial_scan"`
	Debounce        time.Duration `yaml:"debounce"`
}

// LoadConfig loads configuration from environment variables.
// If RC_CONFIG_FILE is set, the YAML file is loaded first and environment
// variables override it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			DSN:             "file:rc-intake.db?_pragma=busy_timeout(5000)",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 5,
			ExportSheet: "RC Records",
		},
		OCR: OCRConfig{
			Tesseract:        "tesseract",
			TesseractLang:    "eng",
			PSM:              6,
			RecognizeTimeout: 2 * time.Minute,
		},
		Intake: IntakeConfig{
			DefaultClientID: "walk-in",
			Debounce:        500 * time.Millisecond,
		},
	}

	if path := os.Getenv("RC_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapError(err, "read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, WrapError(err, "parse config file")
		}
	}

	cfg.Database.DSN = getEnv("DB_URL", cfg.Database.DSN)
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvAsDuration("DB_CONN_LIFETIME", cfg.Database.ConnMaxLifetime)
	cfg.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", cfg.Database.DialTimeout)

	cfg.Server.Addr = getEnv("HTTP_ADDR", cfg.Server.Addr)
	cfg.Server.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", cfg.Server.MaxUploadMB)

	cfg.OCR.Tesseract = getEnv("TESSERACT_BIN", cfg.OCR.Tesseract)
	cfg.OCR.TesseractLang = getEnv("TESSERACT_LANG", cfg.OCR.TesseractLang)
	cfg.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", cfg.OCR.TessdataDir)
	cfg.OCR.PSM = getEnvAsInt("TESSERACT_PSM", cfg.OCR.PSM)
	cfg.OCR.OEM = getEnvAsInt("TESSERACT_OEM", cfg.OCR.OEM)
	cfg.OCR.RecognizeTimeout = getEnvAsDuration("RECOGNIZE_TIMEOUT", cfg.OCR.RecognizeTimeout)

	cfg.Intake.InboxDir = getEnv("INBOX_DIR", cfg.Intake.InboxDir)
	cfg.Intake.DefaultClientID = getEnv("INBOX_CLIENT_ID", cfg.Intake.DefaultClientID)
	cfg.Intake.Debounce = getEnvAsDuration("INBOX_DEBOUNCE", cfg.Intake.Debounce)

	return cfg, nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadMB <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_UPLOAD_MB must be positive", ErrInvalidInput)
	}
	return nil
}
