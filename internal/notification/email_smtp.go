package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

// smtpEmailSender delivers email over SMTP with STARTTLS. A connection is
// made per send; verification-code volume is low enough that keeping a pool
// alive is not worth the stale-connection handling.
type smtpEmailSender struct {
	server *mail.SMTPServer
	from   string
	log    *slog.Logger
}

// NewSMTPEmailSender creates a sender backed by the given SMTP server.
func NewSMTPEmailSender(host string, port int, username, password, from string, log *slog.Logger) emailSender {
	server := mail.NewSMTPClient()
	server.Host = host
	server.Port = port
	server.Username = username
	server.Password = password
	server.Encryption = mail.EncryptionSTARTTLS
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	return &smtpEmailSender{
		server: server,
		from:   from,
		log:    log,
	}
}

// Send delivers a multipart message: HTML body with a plain-text alternative
// for clients that refuse HTML. textBody may be empty, in which case only the
// HTML part is attached.
func (s *smtpEmailSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	// The mail client has its own connect/send timeouts but no context
	// plumbing, so honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := s.server.Connect()
	if err != nil {
		return fmt.Errorf("smtp connect: %w", err)
	}

	msg := mail.NewMSG()
	msg.SetFrom(s.from).AddTo(to).SetSubject(subject)
	msg.SetBody(mail.TextHTML, htmlBody)
	if textBody != "" {
		msg.AddAlternative(mail.TextPlain, textBody)
	}

	if err := msg.Send(conn); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.log.Info("email sent via smtp", "to", to, "subject", subject)
	return nil
}
