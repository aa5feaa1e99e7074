package mail

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/invoiceportal/backend/internal/application/invoicing"
)

// Ensure GmailSender implements invoicing.MailSender
var _ invoicing.MailSender = (*GmailSender)(nil)

// GmailSender sends mail through the Gmail API. Every call builds a service
// around the caller-supplied access token; the backend holds no mail
// credentials of its own.
type GmailSender struct {
	logger *zap.Logger
}

// NewGmailSender creates a Gmail-backed sender
func NewGmailSender(logger *zap.Logger) *GmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GmailSender{logger: logger}
}

// Send dispatches the email as the token's owner ("me").
func (s *GmailSender) Send(ctx context.Context, accessToken string, email invoicing.Email) error {
	if accessToken == "" {
		return errors.New("access token is required")
	}
	if email.To == "" {
		return errors.New("recipient is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}

	msg := &gmail.Message{Raw: EncodeRaw(BuildMIME(email))}
	if _, err := svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		s.logger.Warn("gmail send failed",
			zap.String("to", email.To),
			zap.Error(err))
		return fmt.Errorf("gmail send failed: %w", err)
	}

	s.logger.Info("mail dispatched",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
		zap.Int("attachments", len(email.Attachments)))
	return nil
}
