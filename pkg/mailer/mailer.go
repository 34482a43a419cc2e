// Package mailer sends transactional email over SMTP: contact-form
// notifications, donation receipts and ticket confirmations.
package mailer

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/gomail.v2"
)

type Options struct {
	Host       string
	Port       int
	Username   string
	Password   string
	FromName   string
	FromEmail  string
	AdminEmail string
}

type Mailer struct {
	dialer *gomail.Dialer
	opts   Options
}

func New(opts Options) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(opts.Host, opts.Port, opts.Username, opts.Password),
		opts:   opts,
	}
}

// Enabled reports whether SMTP is configured; without it every send becomes
// a logged no-op so payment flows never depend on mail delivery.
func (m *Mailer) Enabled() bool {
	return m.opts.Host != "" && m.opts.FromEmail != ""
}

func (m *Mailer) Send(to, subject, html string) error {
	if !m.Enabled() {
		slog.Warn("SMTP not configured, dropping email", "to", to, "subject", subject)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.opts.FromEmail, m.opts.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	msg.AddAlternative("text/plain", stripTags(html))

	return m.dialer.DialAndSend(msg)
}

// SendToAdmin delivers to the organization inbox.
func (m *Mailer) SendToAdmin(subject, html string) error {
	if m.opts.AdminEmail == "" {
		slog.Warn("TO_EMAIL not configured, dropping admin email", "subject", subject)
		return nil
	}
	return m.Send(m.opts.AdminEmail, subject, html)
}

// ContactNotification emails the submitted contact form to the organization.
func (m *Mailer) ContactNotification(name, email, message string) error {
	html := fmt.Sprintf(`<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>`, htmlEscape(name), htmlEscape(email), nl2br(htmlEscape(message)))
	return m.SendToAdmin("New Contact Form Submission", html)
}

// ContactConfirmation acknowledges the sender.
func (m *Mailer) ContactConfirmation(name, email, message string) error {
	html := fmt.Sprintf(`<h2>Thank You for Contacting %s</h2>
<p>Dear %s,</p>
<p>We have received your message and will get back to you as soon as possible.</p>
<p><strong>Your message:</strong></p>
<p>%s</p>
<hr>
<p>Best regards,<br>The %s Team</p>`, m.opts.FromName, htmlEscape(name), nl2br(htmlEscape(message)), m.opts.FromName)
	return m.Send(email, "Thank you for contacting "+m.opts.FromName, html)
}

func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func nl2br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}
