package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/theleeeo/pgjobq/jobqueue"
)

type LogArgs struct {
	Message string         `json:"message"`
	Level   string         `json:"level"`
	Fields  map[string]any `json:"fields"`
}

func (a *App) handleLog(ctx context.Context, p LogArgs) error {
	if p.Message == "" {
		return jobqueue.Permanent(&InvalidArgumentError{Msg: "message is required"})
	}

	attrs := make([]any, 0, len(p.Fields)*2)
	for k, v := range p.Fields {
		attrs = append(attrs, k, v)
	}

	switch p.Level {
	case "debug":
		a.log.DebugContext(ctx, p.Message, attrs...)
	case "warn":
		a.log.WarnContext(ctx, p.Message, attrs...)
	case "error":
		a.log.ErrorContext(ctx, p.Message, attrs...)
	default:
		a.log.InfoContext(ctx, p.Message, attrs...)
	}
	return nil
}

type WebhookArgs struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers"`
	Body    json.RawMessage   `json:"body"`
}

func (p WebhookArgs) validate() error {
	if p.URL == "" {
		return &InvalidArgumentError{Msg: "url is required"}
	}
	u, err := url.Parse(p.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &InvalidArgumentError{Msg: fmt.Sprintf("url %q must be an absolute http(s) url", p.URL)}
	}
	switch p.Method {
	case "", http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return &InvalidArgumentError{Msg: fmt.Sprintf("method %q is not supported", p.Method)}
	}
	return nil
}

// handleWebhook delivers Body to URL. 2xx completes the job, 429 and 5xx are
// retried (honoring Retry-After) and any other status buries it.
func (a *App) handleWebhook(ctx context.Context, p WebhookArgs) error {
	if err := p.validate(); err != nil {
		return jobqueue.Permanent(err)
	}

	method := p.Method
	if method == "" {
		method = http.MethodPost
	}
	body := p.Body
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.URL, bytes.NewReader(body))
	if err != nil {
		return jobqueue.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		err := fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
		if after, ok := retryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			return jobqueue.RetryAfter(err, after)
		}
		return err
	default:
		return jobqueue.Permanent(fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}
}

// retryAfter parses a Retry-After header given in seconds or as an HTTP date.
func retryAfter(v string, now time.Time) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	t, err := http.ParseTime(v)
	if err != nil {
		return 0, false
	}
	return max(t.Sub(now), 0), true
}
