// Package notifications delivers triggered-alert emails.
package notifications

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/domain/entities"
	"github.com/gabiquintao/InvestmentPortfolioSystem/internal/infrastructure/config"
)

// EmailNotifier sends alert notifications through SendGrid. It satisfies
// the evaluator's Notifier interface.
type EmailNotifier struct {
	client *sendgrid.Client
	config config.EmailConfig
	logger *zap.Logger
}

// NewEmailNotifier creates a SendGrid-backed notifier
func NewEmailNotifier(cfg config.EmailConfig, logger *zap.Logger) (*EmailNotifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	return &EmailNotifier{
		client: sendgrid.NewSendClient(cfg.APIKey),
		config: cfg,
		logger: logger,
	}, nil
}

// AlertTriggered emails the address stored on the alert. Alerts created
// without an address are silently skipped.
func (n *EmailNotifier) AlertTriggered(ctx context.Context, alert *entities.PriceAlert, price decimal.Decimal) error {
	if alert.NotifyEmail == "" {
		return nil
	}

	direction := "risen above"
	if alert.Direction == entities.AlertDirectionBelow {
		direction = "fallen below"
	}

	subject := fmt.Sprintf("Price alert: target %s reached", alert.TargetPrice.StringFixed(2))
	text := fmt.Sprintf(
		"The asset you are watching has %s your target price of %s. The latest observed price is %s.",
		direction, alert.TargetPrice.StringFixed(2), price.StringFixed(2),
	)
	html := fmt.Sprintf(
		"<p>The asset you are watching has %s your target price of <strong>%s</strong>.</p><p>Latest observed price: <strong>%s</strong></p>",
		direction, alert.TargetPrice.StringFixed(2), price.StringFixed(2),
	)

	from := mail.NewEmail(n.config.FromName, n.config.FromEmail)
	to := mail.NewEmail("", alert.NotifyEmail)
	message := mail.NewSingleEmail(from, subject, to, text, html)

	response, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		n.logger.Error("Failed to send alert email",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	if response.StatusCode >= 400 {
		n.logger.Error("Email service returned error",
			zap.String("alert_id", alert.ID.String()),
			zap.Int("status_code", response.StatusCode),
			zap.String("response_body", response.Body))
		return fmt.Errorf("email service error: status %d", response.StatusCode)
	}

	n.logger.Info("Alert email sent",
		zap.String("alert_id", alert.ID.String()),
		zap.Int("status_code", response.StatusCode))
	return nil
}
