package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"

	"promptburner/content"
)

// Config is everything the CLI reads from the environment.
type Config struct {
	DebugPort         int
	SoraURL           string
	HostMarker        string
	ChromeUserDataDir string
	ContentFile       string
	LogLevel          pterm.LogLevel
	ScreenshotDir     string
	DrainLimit        int
	BusyLimit         int

	Influx  Influx
	Mailbox content.Mailbox
}

// Influx points at the bucket that receives one point per work item.
type Influx struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

func (i Influx) Enabled() bool {
	return i.URL != "" && i.Bucket != ""
}

const (
	DefaultDebugPort  = 9222
	DefaultSoraURL    = "https://sora.chatgpt.com"
	DefaultHostMarker = "sora.chatgpt.com"
	DefaultBusyLimit  = 60
)

// LoadDotEnv loads a .env file into the process environment. A missing
// file is fine; variables already set win over the file.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// FromEnv builds a Config from the current environment.
func FromEnv() (Config, error) {
	return parse(os.Getenv)
}

func parse(getenv func(string) string) (Config, error) {
	var errs []error
	num := func(key string, def int) int {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s: %q is not a non-negative integer", key, v))
			return def
		}
		return n
	}
	str := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		DebugPort:         num("DEBUG_PORT", DefaultDebugPort),
		SoraURL:           str("SORA_URL", DefaultSoraURL),
		HostMarker:        str("SORA_HOST_MARKER", DefaultHostMarker),
		ChromeUserDataDir: getenv("CHROME_USER_DATA_DIR"),
		ContentFile:       getenv("CONTENT_FILE"),
		ScreenshotDir:     getenv("SCREENSHOT_DIR"),
		DrainLimit:        num("DRAIN_LIMIT", 0),
		BusyLimit:         num("BUSY_LIMIT", DefaultBusyLimit),
		Influx: Influx{
			URL:    getenv("INFLUXDB_URL"),
			Token:  getenv("INFLUXDB_TOKEN"),
			Org:    getenv("INFLUXDB_ORG"),
			Bucket: getenv("INFLUXDB_BUCKET"),
		},
		Mailbox: content.Mailbox{
			Server:   getenv("IMAP_SERVER"),
			Username: getenv("IMAP_USERNAME"),
			Password: getenv("IMAP_PASSWORD"),
			Subject:  getenv("IMAP_SUBJECT"),
		},
	}

	if cfg.DebugPort == 0 || cfg.DebugPort > 65535 {
		errs = append(errs, fmt.Errorf("DEBUG_PORT: %d is out of range", cfg.DebugPort))
	}

	if cfg.BusyLimit == 0 {
		errs = append(errs, errors.New("BUSY_LIMIT: must be at least 1"))
	}

	if v := getenv("IMAP_TLS"); v != "" {
		tls, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IMAP_TLS: %q is not a boolean", v))
		}
		cfg.Mailbox.TLS = tls
	}

	level, err := ParseLevel(getenv("LOG_LEVEL"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.LogLevel = level

	return cfg, errors.Join(errs...)
}

// ParseLevel maps a LOG_LEVEL value to a pterm level. Empty means info.
func ParseLevel(s string) (pterm.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return pterm.LogLevelInfo, nil
	case "trace":
		return pterm.LogLevelTrace, nil
	case "debug":
		return pterm.LogLevelDebug, nil
	case "warn", "warning":
		return pterm.LogLevelWarn, nil
	case "error":
		return pterm.LogLevelError, nil
	case "off", "disabled":
		return pterm.LogLevelDisabled, nil
	}
	return pterm.LogLevelInfo, fmt.Errorf("LOG_LEVEL: unknown level %q", s)
}

// Logger returns the console logger for the configured level.
func (c Config) Logger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(c.LogLevel)
}
