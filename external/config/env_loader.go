package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	internalconfig "github.com/warlocks1507/checkin/internal/config"
)

type envConfig struct {
	Env                 string        `env:"ENV" envDefault:"production"`
	Port                int           `env:"PORT" envDefault:"10000"`
	DatabaseURL         string        `env:"DATABASE_URL,required"`
	MentorKey           string        `env:"MENTOR_KEY"`
	ManagerKey          string        `env:"MANAGER_KEY"`
	ClientOrigin        string        `env:"CLIENT_ORIGIN"`
	TeamTimezone        string        `env:"TEAM_TIMEZONE" envDefault:"America/New_York"`
	AutoCloseAfter      time.Duration `env:"AUTO_CLOSE_AFTER" envDefault:"4h"`
	StaleTaskAfter      time.Duration `env:"STALE_TASK_AFTER" envDefault:"72h"`
	CorrectionAutoApply bool          `env:"CORRECTION_AUTO_APPLY" envDefault:"false"`
	NotifyWebhookURL    string        `env:"NOTIFY_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
		slog.Debug("no .env file found; using process environment")
	}

	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                 raw.Env,
		Port:                raw.Port,
		DatabaseURL:         raw.DatabaseURL,
		MentorKey:           raw.MentorKey,
		ManagerKey:          raw.ManagerKey,
		ClientOrigin:        raw.ClientOrigin,
		TeamTimezone:        raw.TeamTimezone,
		AutoCloseAfter:      raw.AutoCloseAfter,
		StaleTaskAfter:      raw.StaleTaskAfter,
		CorrectionAutoApply: raw.CorrectionAutoApply,
		NotifyWebhookURL:    raw.NotifyWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
