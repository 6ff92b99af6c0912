package utils

import (
	"edugate/config"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// SendEmail sends an HTML email through the configured SMTP account
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: EduGate <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1A237E; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A237E; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">%s</div>
			<div class="footer">EduGate &middot; keep learning</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendSubscriptionExpiryReminder mails a user whose plan expires soon
func SendSubscriptionExpiryReminder(email, name, level string, expiresAt *time.Time) {
	expiry := "soon"
	if expiresAt != nil {
		expiry = expiresAt.Format("02 Jan 2006")
	}
	body := fmt.Sprintf(
		`<h2>Hi %s,</h2>
		<p>Your <b>%s</b> subscription expires on <b>%s</b>.</p>
		<p>Renew now to keep unlimited access to your chapters and quizzes.</p>`,
		name, level, expiry,
	)
	if err := SendEmail([]string{email}, "Your subscription is expiring", getEmailTemplate("Subscription Reminder", body)); err != nil {
		fmt.Printf("Failed to send expiry reminder to %s: %v\n", email, err)
	}
}
