package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8082" {
		t.Errorf("default port = %q, want 8082", cfg.Port)
	}
	if cfg.AlertThreshold != 90 {
		t.Errorf("default alert threshold = %v, want 90", cfg.AlertThreshold)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("default fetch timeout = %v, want 30s", cfg.FetchTimeout)
	}
	if cfg.YNABBaseURL != "https://api.ynab.com/v1" {
		t.Errorf("default YNAB base URL = %q", cfg.YNABBaseURL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SPENDING_ALERT_THRESHOLD", "85")
	t.Setenv("REPORT_RECIPIENTS", "a@example.com, b@example.com")
	t.Setenv("FETCH_TIMEOUT", "10s")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("port = %q, want 9000", cfg.Port)
	}
	if cfg.AlertThreshold != 85 {
		t.Errorf("alert threshold = %v, want 85", cfg.AlertThreshold)
	}
	if len(cfg.Recipients) != 2 || cfg.Recipients[0] != "a@example.com" || cfg.Recipients[1] != "b@example.com" {
		t.Errorf("recipients = %v", cfg.Recipients)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("fetch timeout = %v, want 10s", cfg.FetchTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Load()
		cfg.SQLiteDBPath = t.TempDir() + "/budget_history.db"
		return cfg
	}

	t.Run("defaults are valid", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Port = "not-a-port"
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "invalid port") {
			t.Errorf("expected port error, got %v", err)
		}
	})

	t.Run("bad threshold", func(t *testing.T) {
		cfg := base()
		cfg.AlertThreshold = 150
		if err := cfg.Validate(); err == nil {
			t.Error("expected threshold error")
		}
	})

	t.Run("bad amqp scheme", func(t *testing.T) {
		cfg := base()
		cfg.AMQPURL = "http://localhost:5672"
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "AMQP URL scheme") {
			t.Errorf("expected AMQP scheme error, got %v", err)
		}
	})

	t.Run("collects multiple errors", func(t *testing.T) {
		cfg := base()
		cfg.Port = "0"
		cfg.AlertThreshold = -1
		err := cfg.Validate()
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !strings.Contains(err.Error(), "port") || !strings.Contains(err.Error(), "threshold") {
			t.Errorf("expected both errors reported, got: %v", err)
		}
	})
}

func TestValidateRun(t *testing.T) {
	cfg := Load()
	cfg.SQLiteDBPath = t.TempDir() + "/budget_history.db"

	err := cfg.ValidateRun()
	if err == nil {
		t.Fatal("run validation should fail without credentials")
	}
	for _, want := range []string{"YNAB_API_TOKEN", "BUDGET_ID", "SMTP_EMAIL", "REPORT_RECIPIENTS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in error, got: %v", want, err)
		}
	}

	cfg.YNABToken = "token"
	cfg.YNABBudgetID = "budget-1"
	cfg.SMTPUser = "me@example.com"
	cfg.SMTPPassword = "secret"
	cfg.Recipients = []string{"me@example.com"}

	if err := cfg.ValidateRun(); err != nil {
		t.Errorf("complete run config should validate: %v", err)
	}
}
