// Package config centralizes sitecal configuration loaded from YAML
// files, SITECAL_ environment variables and bound command-line flags.
package config

import (
	"fmt"

	"github.com/geosurv/sitecal/internal/calibration"
)

// Config is the complete configuration for the sitecal application.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Calibration defaults (overridable per invocation)
	Calibration CalibrationConfig `mapstructure:"calibration" yaml:"calibration" json:"calibration"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// CalibrationConfig holds the default method and LTM projection
// parameters used when flags do not override them.
type CalibrationConfig struct {
	Method string `mapstructure:"method" yaml:"method" json:"method"`

	LTM LTMConfig `mapstructure:"ltm" yaml:"ltm" json:"ltm"`
}

// LTMConfig parametrizes the custom local transverse Mercator. All
// five values are required when the method is "ltm".
type LTMConfig struct {
	CentralMeridian  float64 `mapstructure:"central_meridian" yaml:"central_meridian" json:"central_meridian"`
	LatitudeOfOrigin float64 `mapstructure:"latitude_of_origin" yaml:"latitude_of_origin" json:"latitude_of_origin"`
	ScaleFactor      float64 `mapstructure:"scale_factor" yaml:"scale_factor" json:"scale_factor"`
	FalseEasting     float64 `mapstructure:"false_easting" yaml:"false_easting" json:"false_easting"`
	FalseNorthing    float64 `mapstructure:"false_northing" yaml:"false_northing" json:"false_northing"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int64  `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q", c.LogLevel)
	}

	if c.Calibration.Method != "" {
		if _, err := calibration.ParseMethod(c.Calibration.Method); err != nil {
			return err
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max_upload_mb: %d", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout_sec: %d", c.Server.TimeoutSec)
	}
	return nil
}
