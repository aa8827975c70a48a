package timeout

import (
	"strings"
	"testing"
	"time"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		DefaultTimeout: 30 * time.Second,
		Rules: []Rule{
			{Pattern: "pg_sleep", Timeout: 2 * time.Second},
			{Pattern: "JOIN", Timeout: 60 * time.Second},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestResolve_MatchesRule(t *testing.T) {
	t.Parallel()
	m := testManager(t)

	d, pattern := m.Resolve("SELECT pg_sleep(10)")
	if d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
	if pattern != "pg_sleep" {
		t.Errorf("expected matched pattern \"pg_sleep\", got %q", pattern)
	}
}

func TestResolve_FirstMatchWins(t *testing.T) {
	t.Parallel()
	m := testManager(t)

	d, _ := m.Resolve("SELECT pg_sleep(1) FROM a JOIN b ON a.id = b.id")
	if d != 2*time.Second {
		t.Errorf("expected 2s (first match wins), got %v", d)
	}
}

func TestResolve_Default(t *testing.T) {
	t.Parallel()
	m := testManager(t)

	d, pattern := m.Resolve("SELECT 1")
	if d != 30*time.Second {
		t.Errorf("expected default 30s, got %v", d)
	}
	if pattern != "" {
		t.Errorf("expected empty pattern for default, got %q", pattern)
	}
}

func TestNewManager_InvalidPattern(t *testing.T) {
	t.Parallel()
	_, err := NewManager(Config{
		DefaultTimeout: time.Second,
		Rules:          []Rule{{Pattern: "([", Timeout: time.Second}},
	})
	if err == nil {
		t.Fatal("expected error for invalid regex")
	}
	if !strings.Contains(err.Error(), "invalid regex pattern") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestNewManager_NoRules(t *testing.T) {
	t.Parallel()
	m, err := NewManager(Config{DefaultTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, _ := m.Resolve("DELETE FROM t WHERE id = 1")
	if d != 5*time.Second {
		t.Errorf("expected 5s, got %v", d)
	}
}
