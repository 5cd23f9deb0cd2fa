package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/adalharness/internal/bridge"
)

// ConfigEnv names the environment variable LoadDefaultConfig reads a
// config file path from.
const ConfigEnv = "ADALHARNESS_CONFIG"

// Duration is a time.Duration that reads Go duration strings from YAML.
type Duration time.Duration

// UnmarshalYAML parses values like "10s" or "250ms".
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config controls a Harness.
//
// Example file:
//
//	timeout: 10s
//	poll_interval: 5ms
//	log_level: debug
//	capture_level: info
//	archive_path: /tmp/adal-logs.db
//	archive_on_failure: true
//	golden_dir: testdata/golden
type Config struct {
	// Timeout bounds every CallAndWait.
	Timeout Duration `yaml:"timeout"`

	// PollInterval is how long an idle pump waits before re-checking its deadline.
	PollInterval Duration `yaml:"poll_interval"`

	// LogLevel enables the harness's own diagnostics on stderr.
	// Empty or "off" discards them.
	LogLevel string `yaml:"log_level,omitempty"`

	// CaptureLevel is the minimum level captured from the library under test.
	// Empty captures everything.
	CaptureLevel string `yaml:"capture_level,omitempty"`

	// ArchivePath is the SQLite archive used when ArchiveOnFailure is set.
	ArchivePath string `yaml:"archive_path,omitempty"`

	// ArchiveOnFailure saves a failed test's captured logs before they are cleared.
	ArchiveOnFailure bool `yaml:"archive_on_failure,omitempty"`

	// GoldenDir holds log snapshots for AssertLogsGolden.
	GoldenDir string `yaml:"golden_dir,omitempty"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Timeout:      Duration(bridge.DefaultTimeout),
		PollInterval: Duration(bridge.DefaultPollInterval),
		LogLevel:     "off",
		CaptureLevel: "debug",
		GoldenDir:    "testdata/golden",
	}
}

// ParseConfig decodes YAML over DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the file named by ADALHARNESS_CONFIG, or returns
// DefaultConfig when the variable is unset.
func LoadDefaultConfig() (Config, error) {
	path := os.Getenv(ConfigEnv)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", time.Duration(c.Timeout))
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", time.Duration(c.PollInterval))
	}
	if _, _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, enabled, err := parseLevel(c.CaptureLevel); err != nil {
		return fmt.Errorf("capture_level: %w", err)
	} else if !enabled && c.CaptureLevel != "" {
		return fmt.Errorf("capture_level: %q would capture nothing; leave it empty to capture everything", c.CaptureLevel)
	}
	if c.ArchiveOnFailure && c.ArchivePath == "" {
		return fmt.Errorf("archive_on_failure requires archive_path")
	}
	return nil
}

// parseLevel maps a level name to a slog level. off reports enabled=false.
func parseLevel(s string) (level slog.Level, enabled bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return 0, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	default:
		return 0, false, fmt.Errorf("unknown level %q: must be one of off, debug, info, warn, error", s)
	}
}
