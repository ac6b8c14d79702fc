package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the service.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvMongoURI      = "MONGO_URI"
	EnvDatabaseDSN   = "DATABASE_DSN"
	EnvJWTSecret     = "JWT_SECRET"
	EnvJWTExpiry     = "JWT_EXPIRY"
	EnvResendAPIKey  = "RESEND_API_KEY"
	EnvMailFrom      = "MAIL_FROM"
	EnvPublicBaseURL = "PUBLIC_BASE_URL"
	EnvAdminEmail    = "ADMIN_EMAIL"
	EnvPort          = "PORT"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// StoreConfig selects the backing store. A present Mongo URI selects the
// document store; otherwise the relational store is used with DatabaseDSN.
type StoreConfig struct {
	MongoURI    string `yaml:"mongo-uri"`
	DatabaseDSN string `yaml:"database-dsn"`
}

// LoadStoreConfig resolves backing-store settings from env and the YAML
// config file. Env values take precedence over file values.
func LoadStoreConfig(configPath string) (StoreConfig, error) {
	// fileConfig maps the YAML fields needed for store resolution.
	type fileConfig struct {
		MongoURI    string `yaml:"mongo-uri"`
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	var result StoreConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return StoreConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
		result.MongoURI = strings.TrimSpace(cfg.MongoURI)
		result.DatabaseDSN = strings.TrimSpace(cfg.DatabaseDSN)
		if result.DatabaseDSN == "" {
			result.DatabaseDSN = strings.TrimSpace(cfg.Database.DSN)
		}
	}

	if uri := strings.TrimSpace(os.Getenv(EnvMongoURI)); uri != "" {
		result.MongoURI = uri
	}
	if dsn := strings.TrimSpace(os.Getenv(EnvDatabaseDSN)); dsn != "" {
		result.DatabaseDSN = dsn
	}
	return result, nil
}

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file with env overrides.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// MailConfig holds email-delivery settings.
type MailConfig struct {
	APIKey  string `yaml:"api-key"`
	From    string `yaml:"from"`
	BaseURL string `yaml:"base-url"` // Public base URL used to build verification links.
}

// LoadMailConfig loads mail settings from the YAML config file with env overrides.
func LoadMailConfig(configPath string) (MailConfig, error) {
	// fileConfig maps the YAML fields needed for mail settings.
	type fileConfig struct {
		Mail MailConfig `yaml:"mail"`
	}

	var result MailConfig

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.Mail
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvResendAPIKey)); key != "" {
		result.APIKey = key
	}
	if from := strings.TrimSpace(os.Getenv(EnvMailFrom)); from != "" {
		result.From = from
	}
	if base := strings.TrimSpace(os.Getenv(EnvPublicBaseURL)); base != "" {
		result.BaseURL = base
	}
	if result.From == "" {
		result.From = "Formworks <no-reply@formworks.app>"
	}
	return result, nil
}

// Port returns the listen port from PORT, falling back to def when the
// variable is unset or not a valid port.
func Port(def int) int {
	raw := strings.TrimSpace(os.Getenv(EnvPort))
	if raw == "" {
		return def
	}
	port, errParse := strconv.Atoi(raw)
	if errParse != nil || port <= 0 || port > 65535 {
		return def
	}
	return port
}

// AdminEmail returns the email address promoted to admin on signup, if any.
func AdminEmail() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(EnvAdminEmail)))
}
