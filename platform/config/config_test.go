package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cadence")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GetLeadCadenceOrderMax() != 100000000 {
		t.Fatalf("expected default order max 100000000, got %d", cfg.GetLeadCadenceOrderMax())
	}
	if cfg.GetOrderConflictMaxRetries() != 3 {
		t.Fatalf("expected default retries 3, got %d", cfg.GetOrderConflictMaxRetries())
	}
	if cfg.GetEnforceTeamCadenceAccess() {
		t.Fatalf("team access enforcement should be off by default")
	}
	if cfg.IsTaskServiceEnabled() {
		t.Fatalf("task service should be disabled without TASK_SERVICE_URL")
	}
	if cfg.GetFieldMapCacheTTL() != 10*time.Minute {
		t.Fatalf("unexpected field map ttl %v", cfg.GetFieldMapCacheTTL())
	}
}

func TestLoadRejectsMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadRejectsTinyOrderCeiling(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cadence")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("LEAD_CADENCE_ORDER_MAX", "1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for LEAD_CADENCE_ORDER_MAX=1")
	}
}

func TestLoadTrimsTaskServiceURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cadence")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("TASK_SERVICE_URL", "http://tasks.internal/")
	t.Setenv("ENFORCE_TEAM_CADENCE_ACCESS", "TRUE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.GetTaskServiceURL() != "http://tasks.internal" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.GetTaskServiceURL())
	}
	if !cfg.GetEnforceTeamCadenceAccess() {
		t.Fatalf("expected team access enforcement to be enabled")
	}
}
