// Package app holds the built-in job handlers shipped with the pgjobq binary.
package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/theleeeo/pgjobq/jobqueue"
)

const (
	JobLog     = "log"
	JobWebhook = "webhook"
)

type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Msg)
}

type App struct {
	log    *slog.Logger
	client *http.Client
}

type Config struct {
	Logger *slog.Logger
	// WebhookTimeout bounds a single webhook delivery. Zero means 10s.
	WebhookTimeout time.Duration
	// HTTPClient overrides the client used for webhooks.
	HTTPClient *http.Client
}

func New(cfg Config) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WebhookTimeout <= 0 {
		cfg.WebhookTimeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.WebhookTimeout}
	}
	return &App{log: cfg.Logger, client: client}
}

// Register binds the built-in handlers into reg.
func (a *App) Register(reg *jobqueue.Registry) error {
	if err := reg.Register(JobLog, jobqueue.Typed(a.handleLog)); err != nil {
		return err
	}
	if err := reg.Register(JobWebhook, jobqueue.Typed(a.handleWebhook)); err != nil {
		return err
	}
	return nil
}
