// Package config reads docscan-mcp settings from the environment.
//
// Every setting has a default, so an empty environment yields a working
// configuration. Detection and enhancement constants are fixed in their
// packages and are not configurable.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvLogLevel     = "DOCSCAN_LOG_LEVEL"
	EnvLogFormat    = "DOCSCAN_LOG_FORMAT"
	EnvMaxWidth     = "DOCSCAN_MAX_WIDTH"
	EnvMaxHeight    = "DOCSCAN_MAX_HEIGHT"
	EnvPreviewSize  = "DOCSCAN_PREVIEW_SIZE"
	EnvOCRLanguage  = "DOCSCAN_OCR_LANGUAGE"
	EnvCameraDevice = "DOCSCAN_CAMERA_DEVICE"
	EnvPortrait     = "DOCSCAN_PORTRAIT"
)

// Log formats accepted in DOCSCAN_LOG_FORMAT.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the runtime settings.
type Config struct {
	LogLevel logrus.Level
	// LogFormat is FormatText or FormatJSON. Empty picks text at debug level
	// and JSON otherwise.
	LogFormat string

	// MaxWidth and MaxHeight cap the size of a captured frame.
	MaxWidth  int
	MaxHeight int

	// PreviewSize is the longest side of a scan_preview thumbnail.
	PreviewSize int

	OCRLanguage  string
	CameraDevice string

	// Portrait turns landscape captures upright.
	Portrait bool
}

// Default returns the configuration used when no variables are set.
func Default() *Config {
	return &Config{
		LogLevel:     logrus.InfoLevel,
		MaxWidth:     4000,
		MaxHeight:    6000,
		PreviewSize:  1024,
		OCRLanguage:  "eng",
		CameraDevice: "0",
	}
}

// Load reads the environment on top of Default. A malformed value is an
// error naming the variable.
func Load() (*Config, error) {
	cfg := Default()

	if v := getEnv(EnvLogLevel, ""); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	switch format := strings.ToLower(getEnv(EnvLogFormat, "")); format {
	case "", FormatText, FormatJSON:
		cfg.LogFormat = format
	default:
		return nil, fmt.Errorf("invalid %s: %q (want text or json)", EnvLogFormat, format)
	}

	var err error
	if cfg.MaxWidth, err = getEnvInt(EnvMaxWidth, cfg.MaxWidth); err != nil {
		return nil, err
	}
	if cfg.MaxHeight, err = getEnvInt(EnvMaxHeight, cfg.MaxHeight); err != nil {
		return nil, err
	}
	if cfg.PreviewSize, err = getEnvInt(EnvPreviewSize, cfg.PreviewSize); err != nil {
		return nil, err
	}
	if cfg.Portrait, err = getEnvBool(EnvPortrait, cfg.Portrait); err != nil {
		return nil, err
	}

	cfg.OCRLanguage = getEnv(EnvOCRLanguage, cfg.OCRLanguage)
	cfg.CameraDevice = getEnv(EnvCameraDevice, cfg.CameraDevice)

	return cfg, nil
}

// Formatter returns the logrus formatter for the configured format.
func (c *Config) Formatter() logrus.Formatter {
	format := c.LogFormat
	if format == "" {
		format = FormatJSON
		if c.LogLevel >= logrus.DebugLevel {
			format = FormatText
		}
	}
	if format == FormatText {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{}
}

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt parses a positive integer.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q is not a positive integer", key, val)
	}
	return n, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := getEnv(key, "")
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
