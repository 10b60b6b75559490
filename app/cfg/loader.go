package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	DataDir         string `long:"data-dir" env:"DATA_DIR" default:"." description:"Directory holding the SQLite database file"`
	WorkerCount     int    `long:"worker-count" env:"WORKER_COUNT" default:"10" description:"Number of concurrent feed fetches during a refresh"`
	FetchTimeout    int    `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-request fetch timeout in seconds"`
	BridgeURL       string `long:"bridge-url" env:"BRIDGE_URL" description:"RSS-Bridge base URL (empty disables bridge lookups)"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"0" description:"Background refresh interval in minutes (0 disables polling)"`
	RetentionDays   int    `long:"retention-days" env:"RETENTION_DAYS" default:"30" description:"Default article retention in days for cleanup"`
	SeedFile        string `long:"seed-file" env:"SEED_FILE" description:"YAML file with bootstrap subscriptions (loaded when the database is empty)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Tributary/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:            raw.Port,
		DataDir:         raw.DataDir,
		WorkerCount:     raw.WorkerCount,
		FetchTimeout:    raw.FetchTimeout,
		BridgeURL:       raw.BridgeURL,
		RefreshInterval: raw.RefreshInterval,
		RetentionDays:   raw.RetentionDays,
		SeedFile:        raw.SeedFile,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
