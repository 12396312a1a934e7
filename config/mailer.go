package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"

	mail "github.com/go-mail/mail/v2"
)

// smtpSettings resolves the mailer configuration at send time, after the .env
// file has been loaded.
func smtpSettings() (host string, port int, user, pass, from string, skipVerify bool) {
	host = os.Getenv("SMTP_HOST")
	port, _ = strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	user = os.Getenv("SMTP_USER")
	pass = os.Getenv("SMTP_PASS")
	from = os.Getenv("SMTP_FROM") // e.g. "Research Incentives <no-reply@your.org>"
	skipVerify = os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1"
	return
}

// SendMail delivers an HTML notification email over STARTTLS. Callers treat
// delivery as best-effort; failures are logged, never propagated into the
// business transaction.
func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}

	host, port, user, pass, from, skipVerify := smtpSettings()
	if host == "" || from == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(host, port, user, pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS

	// ServerName must match the SMTP hostname; InsecureSkipVerify is dev-only.
	d.TLSConfig = &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: skipVerify,
	}

	return d.DialAndSend(m)
}
