// utils/email.go
package utils

import (
	"fmt"

	"github.com/keighl/postmark"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(apiToken, sender string) *EmailService {
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// SendEmail sends a message with both an HTML and a plain text body
func (es *EmailService) SendEmail(toEmail, subject, htmlBody, textBody string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	Logger.Info().Str("to", toEmail).Str("subject", subject).Msg("email sent")
	return nil
}

// SendShoppingList mails a rendered shopping list to the user
func (es *EmailService) SendShoppingList(toEmail string, htmlBody, textBody []byte) error {
	return es.SendEmail(toEmail, "Your shopping list", string(htmlBody), string(textBody))
}
