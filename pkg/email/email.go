package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Mailer sends the transactional emails of the app.
type Mailer interface {
	SendVerificationEmail(email, fullName, token string) error
	SendPasswordResetEmail(email, token string) error
	SendEmailChangeVerification(email, token string) error
	SendPurchaseConfirmation(email, itemName string, amountCents int64, currency string) error
}

type Sender interface {
	Send(from string, to []string, subject, html string) (string, error)
}

type EmailService struct {
	sender      Sender
	from        string
	fromName    string
	frontendURL string
	logger      *zap.Logger
}

func NewEmailService(sender Sender, from, fromName, frontendURL string, logger *zap.Logger) *EmailService {
	return &EmailService{
		sender:      sender,
		from:        from,
		fromName:    fromName,
		frontendURL: frontendURL,
		logger:      logger.Named("email"),
	}
}

func (s *EmailService) SendVerificationEmail(email, fullName, token string) error {
	return s.send(email, "Verify Your Email - GuestLens", "verify-email.html", map[string]interface{}{
		"FullName": fullName,
		"Email":    email,
		"Link":     s.frontendURL + "/verify-email?token=" + token,
	})
}

func (s *EmailService) SendPasswordResetEmail(email, token string) error {
	return s.send(email, "Reset Your Password - GuestLens", "reset-password.html", map[string]interface{}{
		"Email": email,
		"Link":  s.frontendURL + "/reset-password?token=" + token,
	})
}

func (s *EmailService) SendEmailChangeVerification(email, token string) error {
	return s.send(email, "Verify Your New Email - GuestLens", "change-email.html", map[string]interface{}{
		"Email": email,
		"Link":  s.frontendURL + "/confirm-email?token=" + token,
	})
}

func (s *EmailService) SendPurchaseConfirmation(email, itemName string, amountCents int64, currency string) error {
	return s.send(email, "Your GuestLens purchase", "purchase.html", map[string]interface{}{
		"ItemName": itemName,
		"Amount":   FormatAmount(amountCents, currency),
	})
}

func (s *EmailService) send(to, subject, templateName string, data map[string]interface{}) error {
	data["Year"] = time.Now().Year()

	html, err := render(templateName, data)
	if err != nil {
		s.logger.Error("template render failed", zap.String("template", templateName), zap.Error(err))
		return err
	}

	id, err := s.sender.Send(s.fromName+" <"+s.from+">", []string{to}, subject, html)
	if err != nil {
		s.logger.Warn("send failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}

	s.logger.Info("sent", zap.String("to", to), zap.String("subject", subject), zap.String("id", id))
	return nil
}

func render(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
	if err != nil {
		return "", err
	}
	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return "", err
	}
	return body.String(), nil
}

func FormatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}
