// utils/email.go
package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/keighl/postmark"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a single HTML email
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, htmlContent string) error
}

// PostmarkMailer sends through the Postmark API
type PostmarkMailer struct {
	client *postmark.Client
	from   string
}

func NewPostmarkMailer(apiToken, from string) *PostmarkMailer {
	return &PostmarkMailer{client: postmark.NewClient(apiToken, ""), from: from}
}

func (m *PostmarkMailer) Send(_ context.Context, toEmail, subject, htmlContent string) error {
	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("postmark: %w", err)
	}
	return nil
}

// SendGridMailer sends through the SendGrid v3 API
type SendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, from string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), from: mail.NewEmail("Vegmart", from)}
}

func (m *SendGridMailer) Send(ctx context.Context, toEmail, subject, htmlContent string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", toEmail), htmlContent, htmlContent)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// EmailService renders the application's emails and hands them to a Mailer
type EmailService struct {
	mailer Mailer
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(mailer Mailer) *EmailService {
	return &EmailService{mailer: mailer}
}

// SendOTP emails a verification or password reset code
func (es *EmailService) SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration, reset bool) error {
	subject := "Verify Your Email"
	intro := "Use the code below to verify your Vegmart account."
	if reset {
		subject = "Reset Your Password"
		intro = "Use the code below to reset your Vegmart password."
	}
	htmlContent := fmt.Sprintf(
		"<p>%s</p><p style=\"font-size:24px\"><strong>%s</strong></p><p>The code expires in %d minutes.</p>",
		intro, code, int(ttl.Minutes()),
	)
	if err := es.mailer.Send(ctx, toEmail, subject, htmlContent); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
