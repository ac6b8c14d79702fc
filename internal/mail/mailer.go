package mail

import (
	"context"

	"github.com/formworks/formworks/internal/config"
	log "github.com/sirupsen/logrus"
)

// Mailer delivers transactional email. Delivery failures are never fatal to
// the calling operation; callers log and continue.
type Mailer interface {
	// SendVerificationEmail delivers the email-verification link.
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	// SendResetOTP delivers the 6-digit password-reset code.
	SendResetOTP(ctx context.Context, to, name, otp string) error
}

// New returns a Resend-backed mailer when an API key is configured and a
// logging stub otherwise, so local setups work without credentials.
func New(cfg config.MailConfig) Mailer {
	if cfg.APIKey == "" {
		log.Warn("mail: no API key configured, emails will only be logged")
		return &logMailer{}
	}
	return newResendMailer(cfg)
}

// logMailer writes would-be deliveries to the log instead of sending them.
type logMailer struct{}

func (*logMailer) SendVerificationEmail(_ context.Context, to, _, token string) error {
	log.WithFields(log.Fields{"to": to, "token": token}).Info("mail: verification email (not sent)")
	return nil
}

func (*logMailer) SendResetOTP(_ context.Context, to, _, otp string) error {
	log.WithFields(log.Fields{"to": to, "otp": otp}).Info("mail: reset OTP email (not sent)")
	return nil
}
