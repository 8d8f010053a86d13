package mailer

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"gopkg.in/gomail.v2"

	"pine-backend/internal/config"
	"pine-backend/pkg/models"
)

// ErrOwnerNotConfigured marks the missing OWNER_EMAIL short circuit so the
// pipeline records the owner alert as skipped rather than failed.
var ErrOwnerNotConfigured = errors.New("OWNER_EMAIL not set")

type Mailer struct {
	dialer     *gomail.Dialer
	fromEmail  string
	ownerEmail string
}

// New builds the SMTP mailer. Returns nil when the transport is not
// configured, which downgrades the notify stage to a no-op.
func New(cfg *config.Config) *Mailer {
	if !cfg.MailConfigured() {
		log.Println("SMTP not fully configured, emails will not be sent.")
		return nil
	}

	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}

	dialer := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass)
	dialer.SSL = port == 465

	return &Mailer{
		dialer:     dialer,
		fromEmail:  cfg.FromEmail,
		ownerEmail: cfg.OwnerEmail,
	}
}

// Verify checks SMTP connectivity in the background at startup. It never
// gates per-request sends.
func (m *Mailer) Verify() {
	go func() {
		closer, err := m.dialer.Dial()
		if err != nil {
			log.Printf("SMTP verify failed: %v", err)
			return
		}
		closer.Close()
		log.Println("SMTP server is ready to take messages.")
	}()
}

// NotifyOwner emails the lead summary to the business owner. withReply
// selects the AI-assist template (summary plus generated reply); the plain
// template carries the raw message with a Reply-To pointing at the visitor.
func (m *Mailer) NotifyOwner(lead *models.Lead, withReply bool) error {
	if m.ownerEmail == "" {
		return ErrOwnerNotConfigured
	}

	msg := gomail.NewMessage()
	msg.SetHeader("To", m.ownerEmail)

	if withReply {
		msg.SetHeader("From", m.fromEmail)
		subject, body := buildLeadAlert(lead)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", body)
	} else {
		msg.SetAddressHeader("From", m.fromEmail, "PINE Website")
		subject, body, replyTo := buildWebhookAlert(lead)
		msg.SetHeader("Subject", subject)
		if replyTo != "" {
			msg.SetHeader("Reply-To", replyTo)
		}
		msg.SetBody("text/plain", body)
	}

	return m.dialer.DialAndSend(msg)
}

// ConfirmVisitor sends the thank-you email back to the submitter.
func (m *Mailer) ConfirmVisitor(lead *models.Lead) error {
	if lead.Contact == "" {
		return fmt.Errorf("lead has no contact address")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, "PINE Digital Systems")
	msg.SetHeader("To", lead.Contact)
	subject, body := buildVisitorConfirmation(lead)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	return m.dialer.DialAndSend(msg)
}

func buildLeadAlert(lead *models.Lead) (subject, body string) {
	name := lead.Name
	if name == "" {
		name = "Website visitor"
	}
	subject = "New lead: " + name
	body = fmt.Sprintf("New lead at %s\nName: %s\nContact: %s\nMessage: %s\nAI Reply: %s",
		lead.Timestamp, lead.Name, lead.Contact, lead.Message, lead.ReplyText)
	return subject, body
}

func buildWebhookAlert(lead *models.Lead) (subject, body, replyTo string) {
	source := lead.Source
	if source == "" {
		source = "contact-form"
	}
	subject = fmt.Sprintf("New lead from PINE website (%s)", source)

	body = lead.Message
	if lead.Contact != "" {
		body += "\n\nReply to: " + lead.Contact
		replyTo = lead.Contact
	} else {
		body += "\n\n(No email address provided by user)"
	}
	return subject, body, replyTo
}

func buildVisitorConfirmation(lead *models.Lead) (subject, body string) {
	subject = "Thanks for contacting PINE Digital Systems"
	body = "Thanks for reaching out! We received your project details and will reply soon.\n\n---\n" + lead.Message
	return subject, body
}
