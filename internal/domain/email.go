package domain

import "context"

// EmailAttachment is an inline or attached part of an outgoing email.
// A non-empty ContentID makes the part referenceable from HTML as cid:<ContentID>.
type EmailAttachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Data        []byte
}

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
	SendWithAttachments(to, subject, html, text string, attachments []EmailAttachment) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email string
	Name  string
}

// RegistrationEmailData holds data for the registration confirmation email.
type RegistrationEmailData struct {
	Email      string
	Name       string
	EventTitle string
	Venue      string
	Date       string
	TicketID   string
	// QRContentID is the cid the HTML template uses for the inline ticket image.
	QRContentID string
	QRImage     []byte
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
	SendPasswordReset(ctx context.Context, data *PasswordResetEmailData) error
}
