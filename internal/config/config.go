package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Import worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// State lifetimes
	JobTTL     time.Duration
	SessionTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Export
	HighlightStyle string

	// Base style of every editable region
	DefaultFont  string
	DefaultColor string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("TEXTBLOCK_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		SessionTTL: envDuration("SESSION_TTL", 24*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		HighlightStyle: envOr("HIGHLIGHT_STYLE", "github"),

		DefaultFont:  envOr("DEFAULT_FONT", dom.DefaultStyle.FontFamily),
		DefaultColor: envOr("DEFAULT_COLOR", format.DefaultColor),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TEXTBLOCK_API_KEY is required")
	}
	if _, ok := dom.ParseColor(c.DefaultColor); !ok {
		return fmt.Errorf("DEFAULT_COLOR %q is not a colour", c.DefaultColor)
	}
	return nil
}

// Defaults is the base style handed to new blocks and exports.
func (c Config) Defaults() dom.Defaults {
	return dom.Defaults{FontFamily: c.DefaultFont, Color: c.DefaultColor}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
