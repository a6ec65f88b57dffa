// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// CalendarConfig provides settings for the external calendar listing service.
type CalendarConfig interface {
	GetCalendarBaseURL() string
	GetCalendarAPIKey() string
	GetCalendarRequestTimeout() time.Duration
	GetCalendarRequestsPerSecond() float64
	GetCalendarFetchConcurrency() int
}

// EmailConfig provides settings for the sync failure report email.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetErrorRecipient() string
}

// SyncConfig provides settings shared by the sync batch jobs.
type SyncConfig interface {
	GetExportPath() string
	GetPolicyPath() string
}

// SchedulerConfig provides settings for the asynq scheduler and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetSyncQueueName() string
	GetAppointmentSyncInterval() time.Duration
	GetEligibilitySyncInterval() time.Duration
}

// ArchiveConfig provides settings for export snapshot archiving.
type ArchiveConfig interface {
	GetArchiveEndpoint() string
	GetArchiveAccessKey() string
	GetArchiveSecretKey() string
	GetArchiveBucket() string
	GetArchiveUseSSL() bool
	IsArchiveEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	DatabaseURL               string
	ExportPath                string
	PolicyPath                string
	CalendarBaseURL           string
	CalendarAPIKey            string
	CalendarRequestTimeout    time.Duration
	CalendarRequestsPerSecond float64
	CalendarFetchConcurrency  int
	EmailEnabled              bool
	SMTPHost                  string
	SMTPPort                  int
	SMTPUsername              string
	SMTPPassword              string
	EmailFromName             string
	EmailFromAddress          string
	ErrorRecipient            string
	RedisURL                  string
	SyncQueueName             string
	AppointmentSyncInterval   time.Duration
	EligibilitySyncInterval   time.Duration
	ArchiveEndpoint           string
	ArchiveAccessKey          string
	ArchiveSecretKey          string
	ArchiveBucket             string
	ArchiveUseSSL             bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// SyncConfig implementation
func (c *Config) GetExportPath() string { return c.ExportPath }
func (c *Config) GetPolicyPath() string { return c.PolicyPath }

// CalendarConfig implementation
func (c *Config) GetCalendarBaseURL() string                { return c.CalendarBaseURL }
func (c *Config) GetCalendarAPIKey() string                 { return c.CalendarAPIKey }
func (c *Config) GetCalendarRequestTimeout() time.Duration  { return c.CalendarRequestTimeout }
func (c *Config) GetCalendarRequestsPerSecond() float64     { return c.CalendarRequestsPerSecond }
func (c *Config) GetCalendarFetchConcurrency() int          { return c.CalendarFetchConcurrency }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool      { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string   { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetErrorRecipient() string  { return c.ErrorRecipient }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                        { return c.RedisURL }
func (c *Config) GetSyncQueueName() string                   { return c.SyncQueueName }
func (c *Config) GetAppointmentSyncInterval() time.Duration  { return c.AppointmentSyncInterval }
func (c *Config) GetEligibilitySyncInterval() time.Duration  { return c.EligibilitySyncInterval }

// ArchiveConfig implementation
func (c *Config) GetArchiveEndpoint() string  { return c.ArchiveEndpoint }
func (c *Config) GetArchiveAccessKey() string { return c.ArchiveAccessKey }
func (c *Config) GetArchiveSecretKey() string { return c.ArchiveSecretKey }
func (c *Config) GetArchiveBucket() string    { return c.ArchiveBucket }
func (c *Config) GetArchiveUseSSL() bool      { return c.ArchiveUseSSL }
func (c *Config) IsArchiveEnabled() bool      { return c.ArchiveEndpoint != "" && c.ArchiveBucket != "" }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")
	smtpHost := getEnv("SMTP_HOST", "")

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		DatabaseURL:               getEnv("DATABASE_URL", ""),
		ExportPath:                getEnv("EXPORT_PATH", "temp/input/clients-appointments.csv"),
		PolicyPath:                getEnv("SYNC_POLICY_PATH", "sync-policy.yaml"),
		CalendarBaseURL:           getEnv("CALENDAR_BASE_URL", ""),
		CalendarAPIKey:            getEnv("CALENDAR_API_KEY", ""),
		CalendarRequestTimeout:    mustDuration(getEnv("CALENDAR_REQUEST_TIMEOUT", "30s")),
		CalendarRequestsPerSecond: mustFloat(getEnv("CALENDAR_REQUESTS_PER_SECOND", "5")),
		CalendarFetchConcurrency:  mustInt(getEnv("CALENDAR_FETCH_CONCURRENCY", "4")),
		EmailEnabled:              emailEnabled && smtpHost != "",
		SMTPHost:                  smtpHost,
		SMTPPort:                  mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:              getEnv("SMTP_USERNAME", ""),
		SMTPPassword:              getEnv("SMTP_PASSWORD", ""),
		EmailFromName:             getEnv("EMAIL_FROM_NAME", "Clinic Sync"),
		EmailFromAddress:          getEnv("EMAIL_FROM_ADDRESS", ""),
		ErrorRecipient:            getEnv("ERROR_EMAILS", ""),
		RedisURL:                  getEnv("REDIS_URL", ""),
		SyncQueueName:             getEnv("SYNC_QUEUE_NAME", "sync"),
		AppointmentSyncInterval:   mustDuration(getEnv("APPOINTMENT_SYNC_INTERVAL", "6h")),
		EligibilitySyncInterval:   mustDuration(getEnv("ELIGIBILITY_SYNC_INTERVAL", "24h")),
		ArchiveEndpoint:           getEnv("ARCHIVE_ENDPOINT", ""),
		ArchiveAccessKey:          getEnv("ARCHIVE_ACCESS_KEY", ""),
		ArchiveSecretKey:          getEnv("ARCHIVE_SECRET_KEY", ""),
		ArchiveBucket:             getEnv("ARCHIVE_BUCKET", ""),
		ArchiveUseSSL:             strings.EqualFold(getEnv("ARCHIVE_USE_SSL", "true"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.CalendarBaseURL == "" {
		return nil, fmt.Errorf("CALENDAR_BASE_URL is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.EmailEnabled && cfg.ErrorRecipient == "" {
		return nil, fmt.Errorf("ERROR_EMAILS is required when email is enabled")
	}
	if cfg.CalendarFetchConcurrency < 1 {
		cfg.CalendarFetchConcurrency = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}
