package mailer

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailer() *Mailer {
	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
}

func (m *Mailer) send(to, subject, body string) error {
	if m.host == "" {
		return fmt.Errorf("SMTP_HOST is not set")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}

// SendVerificationLink mails the account activation link to a freshly
// signed-up authority.
func (m *Mailer) SendVerificationLink(to, fullName, token string) error {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "http://localhost:8000"
	}
	link := fmt.Sprintf("%s/authority/verify?token=%s", base, token)

	subject := "Verify your pothole reporting account"
	body := fmt.Sprintf("Dear %s,\n\nPlease verify your account by opening the link below. The link is valid for 24 hours.\n\n%s\n\nIf you did not sign up, you can ignore this mail.", fullName, link)
	return m.send(to, subject, body)
}

// SendLoginOTP mails a short-lived login code to an active authority.
func (m *Mailer) SendLoginOTP(to, code string) error {
	subject := "Your login code"
	body := fmt.Sprintf("Your one-time login code is %s. It expires in 5 minutes.\n\nIf you did not request this code, you can ignore this mail.", code)
	return m.send(to, subject, body)
}
