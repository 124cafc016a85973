package notify

import (
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier sends short administrative texts, used to report ingestion
// runs. NewSMSNotifier returns nil when Twilio is not configured; callers
// treat a nil notifier as disabled.
type SMSNotifier struct {
	client *twilio.RestClient
	from   string
	to     string
	logger *slog.Logger
}

type SMSConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
}

func NewSMSNotifier(cfg SMSConfig, logger *slog.Logger) *SMSNotifier {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.FromNumber == "" || cfg.ToNumber == "" {
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSNotifier{
		client: client,
		from:   cfg.FromNumber,
		to:     cfg.ToNumber,
		logger: logger,
	}
}

func (n *SMSNotifier) Send(message string) error {
	if message == "" {
		return fmt.Errorf("SMS content is empty")
	}

	params := &twilioApi.CreateMessageParams{
		To:   &n.to,
		From: &n.from,
		Body: &message,
	}

	msg, err := n.client.Api.CreateMessage(params)
	if err != nil {
		n.logger.Error("Failed to send SMS",
			slog.String("error", err.Error()),
			slog.String("to", n.to))
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	n.logger.Info("SMS notification sent",
		slog.String("message_sid", stringValue(msg.Sid)),
		slog.String("status", stringValue(msg.Status)))
	return nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
