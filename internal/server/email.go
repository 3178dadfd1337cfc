package server

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// EmailConfig holds configuration for sending emails via SMTP
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromEmail    string
	Enabled      bool
}

// LoadEmailConfig reads email configuration from environment variables
func LoadEmailConfig() EmailConfig {
	cfg := EmailConfig{
		SMTPHost:     os.Getenv("DD_SMTP_HOST"),
		SMTPPort:     os.Getenv("DD_SMTP_PORT"),
		SMTPUser:     os.Getenv("DD_SMTP_USER"),
		SMTPPassword: os.Getenv("DD_SMTP_PASSWORD"),
		FromEmail:    os.Getenv("DD_FROM_EMAIL"),
		Enabled:      os.Getenv("DD_EMAIL_ENABLED") == "true",
	}

	// Set defaults if not provided
	if cfg.SMTPPort == "" {
		cfg.SMTPPort = "587"
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.SMTPUser
	}

	return cfg
}

// EmailService handles sending emails
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service
func NewEmailService(cfg EmailConfig) *EmailService {
	return &EmailService{config: cfg}
}

// SendEmail sends one HTML email. When the service is disabled the
// message is logged instead, which is what dev and test runs want.
func (s *EmailService) SendEmail(to, subject, body string) error {
	if !s.config.Enabled {
		log.Printf("EMAIL (disabled): To: %s, Subject: %s", to, subject)
		return nil
	}

	if s.config.SMTPHost == "" || s.config.SMTPUser == "" || s.config.SMTPPassword == "" {
		log.Printf("EMAIL ERROR: SMTP not configured properly")
		return fmt.Errorf("SMTP not configured")
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.config.FromEmail, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPassword, s.config.SMTPHost)
	addr := s.config.SMTPHost + ":" + s.config.SMTPPort
	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		log.Printf("EMAIL ERROR: Failed to send to %s: %v", to, err)
		return err
	}

	log.Printf("EMAIL SENT: To: %s, Subject: %s", to, subject)
	return nil
}

// SendVerificationEmail sends the email-verification link
func (s *EmailService) SendVerificationEmail(to, verifyURL string) error {
	subject := "Verify Your Email - docdrop"
	body := fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
			<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
				<h2>Email Verification</h2>
				<p>Thank you for signing up with docdrop!</p>
				<p>Please verify your email address by clicking the link below:</p>
				<p style="margin: 30px 0;">
					<a href="%s">Verify Email</a>
				</p>
				<p style="color: #666; font-size: 0.9em;">
					Or copy and paste this link into your browser:<br>
					<code>%s</code>
				</p>
				<p style="color: #666; font-size: 0.85em; margin-top: 30px;">
					If you didn't sign up, please ignore this email.
				</p>
			</div>
		</body>
		</html>
	`, verifyURL, verifyURL)

	return s.SendEmail(to, subject, body)
}
