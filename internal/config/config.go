// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// File store backends.
const (
	BackendDrive = "drive"
	BackendGCS   = "gcs"
)

// Config holds everything the service needs at startup. The credential
// values are opaque secrets provided by the environment.
type Config struct {
	Port                string
	LogLevel            string
	ServiceAccountEmail string
	PrivateKey          string
	SpreadsheetID       string
	FileBackend         string
	DriveFolderID       string
	GCSBucket           string
	GCSPrefix           string
	SweepSchedule       string
	SweepGrace          time.Duration
}

// Load reads configuration from environment variables, applies defaults and
// validates the result.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FILE_STORE", BackendDrive)
	v.SetDefault("GCS_PREFIX", "attachments")
	v.SetDefault("SWEEP_GRACE", "24h")

	cfg := &Config{
		Port:                v.GetString("PORT"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		ServiceAccountEmail: v.GetString("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
		PrivateKey:          v.GetString("GOOGLE_PRIVATE_KEY"),
		SpreadsheetID:       v.GetString("GOOGLE_SHEET_ID"),
		FileBackend:         v.GetString("FILE_STORE"),
		DriveFolderID:       v.GetString("GOOGLE_DRIVE_FOLDER_ID"),
		GCSBucket:           v.GetString("GCS_BUCKET"),
		GCSPrefix:           v.GetString("GCS_PREFIX"),
		SweepSchedule:       v.GetString("SWEEP_SCHEDULE"),
		SweepGrace:          v.GetDuration("SWEEP_GRACE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every required value for the selected backend is
// present.
func (c *Config) Validate() error {
	if c.ServiceAccountEmail == "" {
		return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_EMAIL is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("GOOGLE_PRIVATE_KEY is required")
	}
	if c.SpreadsheetID == "" {
		return fmt.Errorf("GOOGLE_SHEET_ID is required")
	}

	switch c.FileBackend {
	case BackendDrive:
		if c.DriveFolderID == "" {
			return fmt.Errorf("GOOGLE_DRIVE_FOLDER_ID is required for the drive backend")
		}
	case BackendGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs backend")
		}
	default:
		return fmt.Errorf("unknown FILE_STORE %q: use %s or %s", c.FileBackend, BackendDrive, BackendGCS)
	}
	return nil
}
