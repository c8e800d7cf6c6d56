package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Env                 string
	Port                int
	DatabaseURL         string
	MentorKey           string
	ManagerKey          string
	ClientOrigin        string
	TeamTimezone        string
	AutoCloseAfter      time.Duration
	StaleTaskAfter      time.Duration
	CorrectionAutoApply bool
	NotifyWebhookURL    string
}

func (c *Config) Validate() error {
	for _, req := range c.requiredFieldChecks() {
		if req.value == "" {
			return fmt.Errorf("%s is required", req.name)
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if _, err := time.LoadLocation(c.TeamTimezone); err != nil {
		return fmt.Errorf("TEAM_TIMEZONE is invalid: %w", err)
	}
	if c.AutoCloseAfter <= 0 {
		return fmt.Errorf("AUTO_CLOSE_AFTER must be positive, got %s", c.AutoCloseAfter)
	}
	if c.StaleTaskAfter <= 0 {
		return fmt.Errorf("STALE_TASK_AFTER must be positive, got %s", c.StaleTaskAfter)
	}
	return nil
}

type requiredEnvField struct {
	name  string
	value string
}

func (c *Config) requiredFieldChecks() []requiredEnvField {
	return []requiredEnvField{
		{name: "DATABASE_URL", value: c.DatabaseURL},
		{name: "TEAM_TIMEZONE", value: c.TeamTimezone},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AllowedOrigins splits CLIENT_ORIGIN; an empty result means any origin.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.ClientOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
