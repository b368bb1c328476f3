package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kai/internal/config"
	"kai/internal/replay"
)

const userAgent = "kai/1.0"

// Service defines the push notification surface used by the sync agent.
type Service interface {
	NotifyDrainFinished(ctx context.Context, result replay.DrainResult) error
	NotifySessionExpired(ctx context.Context) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		drainResults:  cfg.Notifications.DrainResults,
		sessionExpiry: cfg.Notifications.SessionExpiry,
		errors:        cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	drainResults  bool
	sessionExpiry bool
	errors        bool
}

func (n *ntfyService) NotifyDrainFinished(ctx context.Context, result replay.DrainResult) error {
	if !n.drainResults {
		return nil
	}

	var title, message string
	if result.Failed == 0 && result.Skipped == 0 {
		title = "Kai - Queue Drained"
		message = fmt.Sprintf("Sent %d queued items", result.Sent)
	} else {
		title = "Kai - Queue Drained (incomplete)"
		message = fmt.Sprintf("Sent %d, failed %d, skipped %d", result.Sent, result.Failed, result.Skipped)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"kai", "queue", "drained"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySessionExpired(ctx context.Context) error {
	if !n.sessionExpiry {
		return nil
	}
	data := payload{
		title:    "Kai - Session Expired",
		message:  "Your session has expired. Run `kai login` to sign in again.",
		tags:     []string{"kai", "auth", "expired"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}

	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Kai - Error",
		message:  builder.String(),
		tags:     []string{"kai", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Kai - Test",
		message:  "Notification system test",
		tags:     []string{"kai", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDrainFinished(context.Context, replay.DrainResult) error { return nil }
func (noopService) NotifySessionExpired(context.Context) error                    { return nil }
func (noopService) NotifyError(context.Context, error, string) error              { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
