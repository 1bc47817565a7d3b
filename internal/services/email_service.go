package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	pkglogger "github.com/olholv/contactbook/pkg/logger"
)

// EmailService defines the interface for sending emails
type EmailService interface {
	SendConfirmationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// AWSSESEmailService sends emails using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	baseURL     string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, baseURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		baseURL:     baseURL,
		logger:      logger,
	}, nil
}

// SendConfirmationEmail sends the email-confirmation link carrying the raw token
func (s *AWSSESEmailService) SendConfirmationEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/auth/confirm/%s", s.baseURL, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body>
    <p>Welcome!</p>
    <p>To complete your registration, please confirm your email address:</p>
    <p><a href="%s">Confirm email address</a></p>
    <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
    <p>If you didn't sign up for this account, you can ignore this email.</p>
</body>
</html>
`, link, link)

	textBody := fmt.Sprintf(`Welcome!

To complete your registration, please confirm your email address:

%s

If you didn't sign up for this account, you can ignore this email.
`, link)

	return s.send(ctx, email, "Confirm your email", htmlBody, textBody)
}

// SendPasswordResetEmail sends the password-reset link carrying the raw token
func (s *AWSSESEmailService) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", s.baseURL, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body>
    <p>A password reset was requested for your account.</p>
    <p><a href="%s">Reset your password</a></p>
    <p>Or copy and paste this link in your browser:<br><code>%s</code></p>
    <p>This link expires in 1 hour. If you didn't request a reset, you can ignore this email.</p>
</body>
</html>
`, link, link)

	textBody := fmt.Sprintf(`A password reset was requested for your account.

%s

This link expires in 1 hour. If you didn't request a reset, you can ignore this email.
`, link)

	return s.send(ctx, email, "Password Reset Request", htmlBody, textBody)
}

func (s *AWSSESEmailService) send(ctx context.Context, email, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send email via SES",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.String("subject", subject),
		slog.String("message_id", *result.MessageId))

	return nil
}
