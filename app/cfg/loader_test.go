package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		Port:            "8080",
		DataDir:         "./data",
		WorkerCount:     5,
		FetchTimeout:    15,
		BridgeURL:       "https://bridge.example.com",
		RefreshInterval: 30,
		RetentionDays:   14,
		SeedFile:        "./seed.yml",
		UserAgent:       "Test Agent",
		Timezone:        "UTC",
		Debug:           true,
		Version:         "test-version",
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("Expected data dir './data', got '%s'", cfg.DataDir)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if cfg.FetchTimeout != 15 {
		t.Errorf("Expected fetch timeout 15, got %d", cfg.FetchTimeout)
	}
	if cfg.BridgeURL != "https://bridge.example.com" {
		t.Errorf("Expected bridge URL 'https://bridge.example.com', got '%s'", cfg.BridgeURL)
	}
	if cfg.RefreshInterval != 30 {
		t.Errorf("Expected refresh interval 30, got %d", cfg.RefreshInterval)
	}
	if cfg.RetentionDays != 14 {
		t.Errorf("Expected retention days 14, got %d", cfg.RetentionDays)
	}
	if cfg.SeedFile != "./seed.yml" {
		t.Errorf("Expected seed file './seed.yml', got '%s'", cfg.SeedFile)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}

func TestSetAndGet(t *testing.T) {
	original := globalCfg
	defer func() { globalCfg = original }()

	want := &Cfg{Port: "9090"}
	Set(want)

	if got := Get(); got != want {
		t.Error("Get should return the configuration passed to Set")
	}
}
