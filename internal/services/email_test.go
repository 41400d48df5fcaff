package services

import (
	"context"
	"errors"
	"testing"

	"campusticketing/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to, subject, html, text string
	attachments             []domain.EmailAttachment
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, html, text string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html, text: text})
	return m.err
}

func (m *fakeMailer) SendWithAttachments(to, subject, html, text string, attachments []domain.EmailAttachment) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, html: html, text: text, attachments: attachments})
	return m.err
}

type fakeRenderer struct {
	lastName string
	lastData any
	err      error
}

func (r *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	r.lastName, r.lastData = name, data
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject:" + name, "<p>" + name + "</p>", name, nil
}

func TestEmailService_SendWelcomeMessage(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer, nil)

	require.NoError(t, svc.SendWelcomeMessage(context.Background(), &domain.WelcomeMessageEmailData{Email: "a@example.com", Name: "Alice"}))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "welcome", renderer.lastName)
	assert.Equal(t, "a@example.com", mailer.sent[0].to)
	assert.Equal(t, "subject:welcome", mailer.sent[0].subject)

	assert.Error(t, svc.SendWelcomeMessage(context.Background(), nil))
}

func TestEmailService_SendRegistrationConfirmation(t *testing.T) {
	tests := []struct {
		name            string
		image           []byte
		wantAttachments int
	}{
		{name: "inline qr", image: []byte("png"), wantAttachments: 1},
		{name: "no image", image: nil, wantAttachments: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			svc := NewEmailService(mailer, &fakeRenderer{}, nil)

			err := svc.SendRegistrationConfirmation(context.Background(), &domain.RegistrationEmailData{
				Email:      "a@example.com",
				EventTitle: "Expo",
				QRImage:    tt.image,
			})
			require.NoError(t, err)
			require.Len(t, mailer.sent, 1)
			require.Len(t, mailer.sent[0].attachments, tt.wantAttachments)
			if tt.wantAttachments == 1 {
				att := mailer.sent[0].attachments[0]
				assert.Equal(t, ticketQRContentID, att.ContentID)
				assert.Equal(t, "image/png", att.ContentType)
				assert.Equal(t, tt.image, att.Data)
			}
		})
	}
}

func TestEmailService_SendPasswordReset(t *testing.T) {
	mailer := &fakeMailer{}
	renderer := &fakeRenderer{}
	svc := NewEmailService(mailer, renderer, nil)

	data := &domain.PasswordResetEmailData{Email: "a@example.com", Name: "Alice", Code: "123456", ExpiresInMinutes: 10}
	require.NoError(t, svc.SendPasswordReset(context.Background(), data))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "password_reset", renderer.lastName)
	assert.Same(t, data, renderer.lastData)
	assert.Equal(t, "a@example.com", mailer.sent[0].to)
	assert.Empty(t, mailer.sent[0].attachments)

	assert.Error(t, svc.SendPasswordReset(context.Background(), nil))
}

func TestEmailService_Errors(t *testing.T) {
	svc := NewEmailService(&fakeMailer{}, &fakeRenderer{err: errors.New("bad template")}, nil)
	err := svc.SendRegistrationConfirmation(context.Background(), &domain.RegistrationEmailData{Email: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render")

	svc = NewEmailService(&fakeMailer{err: errors.New("ses down")}, &fakeRenderer{}, nil)
	err = svc.SendWelcomeMessage(context.Background(), &domain.WelcomeMessageEmailData{Email: "a@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send")
}
