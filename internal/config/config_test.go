package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":                "test",
		"APP_PORT":               "8080",
		"JWT_SECRET":             "secret",
		"ACCESS_TOKEN_TTL_MIN":   "15",
		"REFRESH_TOKEN_TTL_DAYS": "7",
		"BCRYPT_COST":            "4",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadMemoryDriverSkipsDatabaseVars(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SWEEP_SCHEDULE", "*/30 * * * * *")

	cfg := Load()
	if cfg.StoreDriver != DriverMemory {
		t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
	}
	if cfg.AccessTTLMin != 15 || cfg.RefreshTTLDays != 7 || cfg.BcryptCost != 4 {
		t.Fatalf("unexpected token settings: %+v", cfg)
	}
	if cfg.Queue.Queue != "reservation.events" || cfg.Log.Level != "info" {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Queue, cfg.Log)
	}
	if cfg.Jobs.SweepSchedule != "*/30 * * * * *" || !cfg.Jobs.SweepEnabled {
		t.Fatalf("unexpected job config: %+v", cfg.Jobs)
	}
}

func TestRateLimitNormalizes(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	c := LoadRateLimitConfig()
	if c.Capacity != 1 {
		t.Errorf("Capacity = %d, want 1", c.Capacity)
	}
	if c.TTL != 10*time.Second {
		t.Errorf("TTL = %v, want 10s", c.TTL)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG_ON", "Yes")
	t.Setenv("FLAG_OFF", "0")
	t.Setenv("FLAG_BAD", "maybe")
	if !envBool("FLAG_ON", false) || envBool("FLAG_OFF", true) || !envBool("FLAG_BAD", true) {
		t.Fatal("envBool parsed unexpectedly")
	}
}

func TestCacheMethodsUppercased(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	c := LoadCacheConfig()
	if !c.Methods["GET"] || !c.Methods["HEAD"] || len(c.Methods) != 2 {
		t.Fatalf("Methods = %v", c.Methods)
	}
}
