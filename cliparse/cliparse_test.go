// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DBPath != "data/edubot.db" {
		t.Errorf("expected default db path, got %q", cfg.DBPath)
	}
	if cfg.FlushInterval != time.Minute {
		t.Errorf("expected default flush interval 1m, got %v", cfg.FlushInterval)
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("EDUBOT_DB_PATH", "/var/lib/edubot/cache.db")
	t.Setenv("EDUBOT_FLUSH_INTERVAL", "30s")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DBPath != "/var/lib/edubot/cache.db" {
		t.Errorf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.FlushInterval != 30*time.Second {
		t.Errorf("expected 30s flush interval, got %v", cfg.FlushInterval)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("EDUBOT_DB_PATH", "/ignored.db")
	t.Setenv("EDUBOT_FLUSH_INTERVAL", "5m")

	cfg, err := ParseFlags([]string{"-d", "local.db", "-flush", "10s"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.DBPath != "local.db" {
		t.Errorf("CLI should override env: expected local.db, got %q", cfg.DBPath)
	}
	if cfg.FlushInterval != 10*time.Second {
		t.Errorf("CLI should override env: expected 10s, got %v", cfg.FlushInterval)
	}
}

func TestParseFlags_BadInterval(t *testing.T) {
	if _, err := ParseFlags([]string{"-flush", "soon"}); err == nil {
		t.Error("expected error for unparseable interval")
	}
	if _, err := ParseFlags([]string{"-flush", "-1m"}); err == nil {
		t.Error("expected error for negative interval")
	}
	if _, err := ParseFlags([]string{"-flush", "0s"}); err == nil {
		t.Error("expected error for zero interval")
	}
}
