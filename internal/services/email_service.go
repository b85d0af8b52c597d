package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// subjectByKind maps notification kinds to email subjects.
var subjectByKind = map[string]string{
	"subscription_started":   "Your subscription is active",
	"subscription_updated":   "Your subscription was updated",
	"subscription_canceled":  "Your subscription was canceled",
	"trial_ending":           "Your trial is ending soon",
	"payment_succeeded":      "Payment received",
	"payment_failed":         "We could not process your payment",
	"payment_method_added":   "A payment method was added to your account",
	"payment_method_removed": "A payment method was removed from your account",
}

// EmailService implements the CustomerNotifier collaborator on top of Resend.
type EmailService struct {
	client    *resend.Client
	logger    *zap.Logger
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey string, fromEmail string, fromName string, logger *zap.Logger) *EmailService {
	client := resend.NewClient(apiKey)

	return &EmailService{
		client:    client,
		logger:    logger,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// NotifyCustomer sends a notification email for a webhook event payload.
// The recipient is taken from the payload's customer_email field when the
// platform includes one; events without a resolvable recipient are logged
// and skipped rather than treated as failures.
func (s *EmailService) NotifyCustomer(ctx context.Context, kind string, payload json.RawMessage) error {
	var object struct {
		ID            string `json:"id"`
		CustomerEmail string `json:"customer_email"`
		CustomerName  string `json:"customer_name"`
	}
	if err := json.Unmarshal(payload, &object); err != nil {
		return errors.Wrap(err, "failed to decode event payload")
	}

	if object.CustomerEmail == "" {
		s.logger.Info("Event payload carries no customer email, skipping notification",
			zap.String("kind", kind),
			zap.String("object_id", object.ID))
		return nil
	}

	subject, ok := subjectByKind[kind]
	if !ok {
		subject = "Account update"
	}

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{object.CustomerEmail},
		Subject: subject,
		Text:    fmt.Sprintf("Hello %s,\n\nThere is an update on your account: %s.\n", object.CustomerName, subject),
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "billing_event"},
			{Name: "kind", Value: kind},
		},
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("failed to send notification email",
			zap.Error(err),
			zap.String("to", object.CustomerEmail),
			zap.String("kind", kind))
		return errors.Wrap(err, "failed to send email")
	}

	s.logger.Info("notification email sent",
		zap.String("email_id", sent.Id),
		zap.String("to", object.CustomerEmail),
		zap.String("kind", kind))

	return nil
}
