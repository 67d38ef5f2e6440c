// SPDX-License-Identifier: MIT

// Package config assembles the runtime configuration of overlayd from
// environment variables. Configuration is read once at startup and never
// mutated afterwards.
package config

import (
	"fmt"
	"strings"
	"time"
)

// AppConfig holds the complete runtime configuration.
type AppConfig struct {
	ListenAddr   string // HTTP listen address, e.g. ":8080"
	DBPath       string // SQLite database file path
	LinksFile    string // JSON seed file with overlay links
	SnapshotsDir string // directory with per-court score snapshot files

	// Credentials for the configuration panel. Both must be set or the
	// gated routes deny access (fail closed).
	AdminUser string
	AdminPass string

	LogLevel string

	// API rate limiting
	RateLimitEnabled bool
	RateLimitRPS     int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FromEnv builds an AppConfig from environment variables with defaults.
func FromEnv() AppConfig {
	return AppConfig{
		ListenAddr:       ParseString("OVERLAYD_LISTEN", ":8080"),
		DBPath:           ParseString("OVERLAYD_DB", "overlay.db"),
		LinksFile:        ParseString("OVERLAYD_LINKS_FILE", "overlay_links.json"),
		SnapshotsDir:     ParseString("OVERLAYD_SNAPSHOTS_DIR", "snapshots"),
		AdminUser:        ParseString("OVERLAYD_ADMIN_USER", ""),
		AdminPass:        ParseString("OVERLAYD_ADMIN_PASS", ""),
		LogLevel:         NormalizeLogLevel(ParseString("LOG_LEVEL", "INFO")),
		RateLimitEnabled: ParseBool("OVERLAYD_RATE_LIMIT", true),
		RateLimitRPS:     ParseInt("OVERLAYD_RATE_LIMIT_RPS", 50),
		ReadTimeout:      ParseDuration("OVERLAYD_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:     ParseDuration("OVERLAYD_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:      ParseDuration("OVERLAYD_IDLE_TIMEOUT", 120*time.Second),
	}
}

// NormalizeLogLevel maps the documented verbosity names (DEBUG, INFO, WARNING,
// ERROR, CRITICAL) onto zerolog level strings. Unknown values pass through
// lowercased so zerolog can reject them itself.
func NormalizeLogLevel(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return "debug"
	case "INFO":
		return "info"
	case "WARNING", "WARN":
		return "warn"
	case "ERROR":
		return "error"
	case "CRITICAL", "FATAL":
		return "fatal"
	default:
		return strings.ToLower(strings.TrimSpace(level))
	}
}

// Validate checks the configuration for values that cannot work at all.
func (c AppConfig) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("config: listen address must not be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: database path must not be empty")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("config: rate limit RPS must be positive, got %d", c.RateLimitRPS)
	}
	return nil
}

// AuthConfigured reports whether the admin credential pair is fully set.
func (c AppConfig) AuthConfigured() bool {
	return c.AdminUser != "" && c.AdminPass != ""
}
