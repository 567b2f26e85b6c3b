package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP API
	Port string

	// Transaction source (YNAB)
	YNABToken    string
	YNABBudgetID string
	YNABBaseURL  string
	FetchTimeout time.Duration

	// Database
	SQLiteDBPath string

	// Reports and exports
	ReportDir        string
	PlanFile         string
	RetentionAge     time.Duration
	TestRetentionAge time.Duration

	// Alerting
	AlertThreshold float64

	// Email delivery
	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	Recipients     []string
	TestRecipient  string
	DashboardURL   string

	// AMQP alert notifications (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8082"),

		YNABToken:    getEnv("YNAB_API_TOKEN", ""),
		YNABBudgetID: getEnv("BUDGET_ID", ""),
		YNABBaseURL:  getEnv("YNAB_BASE_URL", "https://api.ynab.com/v1"),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 30*time.Second),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/budget_history.db"),

		ReportDir:        getEnv("REPORT_DIR", "./reports"),
		PlanFile:         getEnv("BUDGET_PLAN_FILE", ""),
		RetentionAge:     getEnvDuration("REPORT_RETENTION", 90*24*time.Hour),
		TestRetentionAge: getEnvDuration("TEST_REPORT_RETENTION", 7*24*time.Hour),

		AlertThreshold: getEnvFloat("SPENDING_ALERT_THRESHOLD", 90),

		SMTPHost:      getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      getEnv("SMTP_EMAIL", ""),
		SMTPPassword:  getEnv("SMTP_APP_PASSWORD", ""),
		Recipients:    getEnvList("REPORT_RECIPIENTS", nil),
		TestRecipient: getEnv("TEST_RECIPIENT", ""),
		DashboardURL:  getEnv("DASHBOARD_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "budgetwatch"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "spending_alerts"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid.
// ValidateRun additionally requires the automation-run settings.
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate SQLite path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate alert threshold
	if c.AlertThreshold <= 0 || c.AlertThreshold >= 100 {
		errors = append(errors, fmt.Sprintf("invalid alert threshold %v: must be between 0 and 100 exclusive", c.AlertThreshold))
	}

	// Validate fetch timeout
	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate plan file if specified
	if c.PlanFile != "" {
		if _, err := os.Stat(c.PlanFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("budget plan file does not exist: %s", c.PlanFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateSource checks only the transaction provider settings. Export-only
// runs need these without any email configuration.
func (c *Config) ValidateSource() error {
	if errors := c.sourceErrors(); len(errors) > 0 {
		return fmt.Errorf("source configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (c *Config) sourceErrors() []string {
	var errors []string

	if c.YNABToken == "" {
		errors = append(errors, "YNAB_API_TOKEN is required")
	}
	if c.YNABBudgetID == "" {
		errors = append(errors, "BUDGET_ID is required")
	}
	if u, err := url.Parse(c.YNABBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid YNAB base URL '%s'", c.YNABBaseURL))
	}

	return errors
}

// SMTPPortNumber returns the SMTP port as an integer, or 0 when unset or
// malformed. ValidateRun rejects malformed ports before this is used.
func (c *Config) SMTPPortNumber() int {
	port, err := strconv.Atoi(c.SMTPPort)
	if err != nil {
		return 0
	}
	return port
}

// ValidateRun checks the settings the automation run needs on top of
// Validate: provider credentials and email delivery.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}

	errors := c.sourceErrors()

	if c.SMTPUser == "" {
		errors = append(errors, "SMTP_EMAIL is required")
	}
	if c.SMTPPassword == "" {
		errors = append(errors, "SMTP_APP_PASSWORD is required")
	}
	if len(c.Recipients) == 0 {
		errors = append(errors, "REPORT_RECIPIENTS cannot be empty")
	}
	if port, err := strconv.Atoi(c.SMTPPort); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid SMTP port '%s'", c.SMTPPort))
	}

	if len(errors) > 0 {
		return fmt.Errorf("run configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
