// utils/email.go
package utils

import (
	"fmt"
	"os"

	"github.com/keighl/postmark"

	"urbancart/models"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
}

// NewEmailService returns a Postmark-backed EmailService, or nil when no API
// token is configured (callers treat nil as "email disabled").
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		return nil
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendPaymentConfirmationEmail notifies the user that their order's payment
// went through.
func (es *EmailService) SendPaymentConfirmationEmail(toEmail, name string, order *models.Order) error {
	subject := "Payment Confirmed - UrbanCart"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>We have received your payment for order <strong>%s</strong>.<br><br>Total Amount: <strong>₹%.2f</strong><br><br>Thank you for shopping with us!",
		name,
		order.OrderNumber,
		order.TotalAmount,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
