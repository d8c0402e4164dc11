package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
	logger          zerolog.Logger
}

// NewClient creates a new FCM client using the provided credentials file
func NewClient(ctx context.Context, credentialsFile string, logger zerolog.Logger) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	logger.Info().Msg("FCM client initialized")
	return &Client{
		messagingClient: messagingClient,
		logger:          logger,
	}, nil
}

// NotificationData contains the data to send in a push notification
type NotificationData struct {
	Title    string
	Body     string
	ImageURL string            // Optional notification image
	Data     map[string]string // Custom data payload
}

func (n NotificationData) notification() *messaging.Notification {
	return &messaging.Notification{
		Title:    n.Title,
		Body:     n.Body,
		ImageURL: n.ImageURL,
	}
}

func (n NotificationData) webpush() *messaging.WebpushConfig {
	return &messaging.WebpushConfig{
		Notification: &messaging.WebpushNotification{
			Title: n.Title,
			Body:  n.Body,
			Icon:  "/icon-192.svg",
		},
	}
}

// SendToDevices sends a push notification to multiple device tokens
// Returns a list of tokens that failed to receive the notification
func (c *Client) SendToDevices(ctx context.Context, tokens []string, notification NotificationData) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: notification.notification(),
		Data:         notification.Data,
		Webpush:      notification.webpush(),
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	c.logger.Debug().
		Int("success", response.SuccessCount).
		Int("failure", response.FailureCount).
		Msg("FCM multicast sent")

	var failedTokens []string
	for i, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[i])
			c.logger.Warn().Err(resp.Error).Str("token", Redact(tokens[i])).Msg("FCM delivery failed")
		}
	}

	return failedTokens, nil
}

// Redact shortens a token for logging
func Redact(token string) string {
	const keep = 12
	if len(token) <= keep {
		return token
	}
	return token[:keep] + "..."
}
