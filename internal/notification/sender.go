package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	devicedomain "todo-backend/internal/device/domain"
	"todo-backend/internal/task/scheduler"
	"todo-backend/pkg/fcm"

	"github.com/rs/zerolog"
)

// Sender delivers a fired alert to one channel
type Sender interface {
	Name() string
	Send(ctx context.Context, alert scheduler.Alert) error
}

// LogSender writes fired alerts to the log
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(_ context.Context, alert scheduler.Alert) error {
	s.logger.Info().
		Str("task_id", alert.ID).
		Str("title", alert.Title).
		Str("body", alert.Body).
		Time("fire_at", alert.FireAt).
		Msg("reminder fired")
	return nil
}

// PushClient is the part of the FCM client the sender needs
type PushClient interface {
	SendToDevices(ctx context.Context, tokens []string, notification fcm.NotificationData) ([]string, error)
}

// TokenStore lists and prunes registered device tokens
type TokenStore interface {
	ListTokens() ([]devicedomain.DeviceToken, error)
	DeleteToken(token string) error
}

// FCMSender pushes fired alerts to every registered device
type FCMSender struct {
	client  PushClient
	devices TokenStore
	logger  zerolog.Logger
}

func NewFCMSender(client PushClient, devices TokenStore, logger zerolog.Logger) *FCMSender {
	return &FCMSender{client: client, devices: devices, logger: logger}
}

func (s *FCMSender) Name() string { return "fcm" }

func (s *FCMSender) Send(ctx context.Context, alert scheduler.Alert) error {
	devices, err := s.devices.ListTokens()
	if err != nil {
		return fmt.Errorf("failed to list device tokens: %w", err)
	}
	if len(devices) == 0 {
		s.logger.Debug().Str("task_id", alert.ID).Msg("no registered devices, skipping push")
		return nil
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}

	failed, err := s.client.SendToDevices(ctx, tokens, reminderNotification(alert))
	if err != nil {
		return err
	}

	// Failed tokens are stale registrations
	var errs []error
	for _, token := range failed {
		if err := s.devices.DeleteToken(token); err != nil {
			errs = append(errs, err)
		}
	}
	if len(failed) > 0 {
		s.logger.Info().Int("pruned", len(failed)).Msg("removed failed device tokens")
	}

	s.logger.Info().Str("task_id", alert.ID).Int("devices", len(tokens)-len(failed)).Msg("reminder pushed")
	return errors.Join(errs...)
}

func reminderNotification(alert scheduler.Alert) fcm.NotificationData {
	body := alert.Body
	if body == "" {
		body = "You have a task to complete"
	}
	return fcm.NotificationData{
		Title: alert.Title,
		Body:  body,
		Data: map[string]string{
			"type":         "task_reminder",
			"task_id":      alert.ID,
			"fire_at":      alert.FireAt.Format(time.RFC3339),
			"click_action": "/tasks",
		},
	}
}
