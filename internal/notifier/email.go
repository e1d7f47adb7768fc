package notifier

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"StreakSentinel/internal/model"
)

// EmailNotifier delivers outcomes over SMTP with STARTTLS, sending a
// multipart/alternative message with plain-text and HTML bodies.
type EmailNotifier struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Recipient string
}

func NewEmailNotifier(host string, port int, username, password, recipient string) *EmailNotifier {
	return &EmailNotifier{
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		Recipient: recipient,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

// Notify renders and sends the outcome email. net/smtp offers no context
// hook, so cancellation only bounds the time before the dial starts.
func (e *EmailNotifier) Notify(ctx context.Context, outcome *model.Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := Subject(outcome)
	msg := e.buildMessage(subject, FormatText(outcome), FormatHTML(outcome))

	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	auth := smtp.PlainAuth("", e.Username, e.Password, e.Host)

	log.Printf("[INFO] sending email notification: %s", subject)
	if err := smtp.SendMail(addr, auth, e.Username, []string{e.Recipient}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.Println("[INFO] email notification sent")
	return nil
}

const mimeBoundary = "streak-sentinel-boundary"

func (e *EmailNotifier) buildMessage(subject, text, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.Username)
	fmt.Fprintf(&b, "To: %s\r\n", e.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", mimeBoundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)
	return []byte(b.String())
}
