package mail

import (
	"context"
	"fmt"

	"github.com/formworks/formworks/internal/config"
	"github.com/resend/resend-go/v2"
)

// resendMailer delivers email through the Resend HTTP API.
type resendMailer struct {
	client *resend.Client
	cfg    config.MailConfig
}

func newResendMailer(cfg config.MailConfig) *resendMailer {
	return &resendMailer{client: resend.NewClient(cfg.APIKey), cfg: cfg}
}

func (m *resendMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.cfg.BaseURL, token)
	params := &resend.SendEmailRequest{
		From:    m.cfg.From,
		To:      []string{to},
		Subject: "Verify your email address",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Confirm your email address to finish setting up your account.</p>"+
				"<p><a href=%q>Verify email</a></p><p>This link expires in 24 hours.</p>",
			name, link),
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("mail: send verification email: %w", err)
	}
	return nil
}

func (m *resendMailer) SendResetOTP(ctx context.Context, to, name, otp string) error {
	params := &resend.SendEmailRequest{
		From:    m.cfg.From,
		To:      []string{to},
		Subject: "Your password reset code",
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your password reset code is:</p><h2>%s</h2>"+
				"<p>The code expires in 10 minutes. If you did not request a reset, ignore this email.</p>",
			name, otp),
	}
	if _, err := m.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("mail: send reset otp: %w", err)
	}
	return nil
}
