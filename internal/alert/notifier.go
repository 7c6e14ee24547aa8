// Package alert posts threshold and maintenance alerts to an operator-facing
// webhook. Notifications are best-effort: no retry, failures are logged and
// dropped.
package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"smartfactory/pkg/config"
	"smartfactory/pkg/logger"
)

// Notification is the JSON body posted to the webhook.
type Notification struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers alert notifications over HTTP.
type Notifier struct {
	client     *resty.Client
	webhookURL string
}

// NewNotifier builds a webhook notifier from configuration. A notifier with
// an empty webhook URL is valid and drops every notification.
func NewNotifier(cfg config.AlertConfig) *Notifier {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &Notifier{
		client:     client,
		webhookURL: cfg.WebhookURL,
	}
}

// Notify posts the notification to the configured webhook.
func (n *Notifier) Notify(ctx context.Context, notification Notification) error {
	if n.webhookURL == "" {
		return nil
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(notification).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to post alert webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("alert webhook returned status %d", resp.StatusCode())
	}
	return nil
}

// NotifyAsync fires the notification from a goroutine and logs any failure.
// Callers on the request path use this so alert delivery never blocks a
// response.
func (n *Notifier) NotifyAsync(notification Notification) {
	if n == nil || n.webhookURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := n.Notify(ctx, notification); err != nil {
			logger.GetLogger().Error("Failed to deliver alert notification",
				zap.String("type", notification.Type),
				zap.Error(err))
		}
	}()
}
