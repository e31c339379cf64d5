package pdfmailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"
)

// Attachment is a file carried by an outbound email.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Message is one outbound email.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds mail transport settings. Host, port, and the sender
// identity are required; credentials may be empty for unauthenticated relays.
type SMTPConfig struct {
	Host        string `yaml:"host" env:"MAIL_HOST"`
	Port        int    `yaml:"port" env:"MAIL_PORT"`
	Username    string `yaml:"username" env:"MAIL_USER"`
	Password    string `yaml:"password" env:"MAIL_PASS"`
	TLSMode     string `yaml:"tlsMode" env:"MAIL_TLS_MODE"` // "starttls", "tls", or "plain"
	FromName    string `yaml:"fromName" env:"MAIL_FROM_NAME"`
	FromAddress string `yaml:"fromAddress" env:"MAIL_FROM_ADDRESS"`
}

// Validate checks that the configuration is complete enough to send mail.
func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidMailConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be between 1 and 65535", ErrInvalidMailConfig)
	}
	switch c.TLSMode {
	case "starttls", "tls", "plain":
	default:
		return fmt.Errorf("%w: tlsMode must be starttls, tls, or plain", ErrInvalidMailConfig)
	}
	if _, ok := normalizeEmail(c.FromAddress); !ok {
		return fmt.Errorf("%w: fromAddress must be a valid email address", ErrInvalidMailConfig)
	}
	return nil
}

// SMTPMailer implements Mailer over plain SMTP. Safe for concurrent use;
// each Send opens its own connection.
type SMTPMailer struct {
	cfg  SMTPConfig
	auth smtp.Auth
}

// Compile-time interface check.
var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates an SMTP-backed mailer, failing fast on incomplete
// configuration rather than at first send.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPMailer{cfg: cfg, auth: auth}, nil
}

// Send builds a MIME message and delivers it in a single SMTP transaction.
// The context is checked before the transaction starts; the transaction
// itself is bounded by the server, not the context.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMailSend, err)
	}

	raw, err := m.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailSend, err)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	switch m.cfg.TLSMode {
	case "tls":
		err = m.sendWithTLS(addr, msg.To, raw)
	case "starttls":
		err = m.sendWithSTARTTLS(addr, msg.To, raw)
	default:
		err = m.sendPlain(addr, msg.To, raw)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMailSend, err)
	}
	return nil
}

// buildMessage renders the message as multipart/mixed MIME: an HTML body
// part followed by one base64-encoded part per attachment.
func (m *SMTPMailer) buildMessage(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	from := m.cfg.FromAddress
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.cfg.FromName), m.cfg.FromAddress)
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", mw.Boundary())
	fmt.Fprintf(&buf, "\r\n")

	body, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="UTF-8"`},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeQuotedPrintable(body, msg.HTMLBody); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, att.Filename)},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Filename)},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(part, att.Content); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeQuotedPrintable encodes s as quoted-printable into w.
func writeQuotedPrintable(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return err
	}
	return qp.Close()
}

// writeBase64 encodes data as base64 into w, wrapped at 76 columns per
// RFC 2045.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(len(encoded), 76)
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// sendWithTLS delivers over a direct TLS connection.
func (m *SMTPMailer) sendWithTLS(addr, to string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("connecting with TLS: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	return m.transact(client, to, raw)
}

// sendWithSTARTTLS delivers over a plain connection upgraded via STARTTLS.
func (m *SMTPMailer) sendWithSTARTTLS(addr, to string, raw []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer func() { _ = client.Close() }()

	if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	return m.transact(client, to, raw)
}

// sendPlain delivers without encryption.
func (m *SMTPMailer) sendPlain(addr, to string, raw []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer func() { _ = client.Close() }()

	return m.transact(client, to, raw)
}

// transact runs the MAIL/RCPT/DATA exchange on an open client.
func (m *SMTPMailer) transact(client *smtp.Client, to string, raw []byte) error {
	if m.auth != nil {
		if err := client.Auth(m.auth); err != nil {
			return fmt.Errorf("authenticating: %w", err)
		}
	}
	if err := client.Mail(m.cfg.FromAddress); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("opening data writer: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data writer: %w", err)
	}

	// Quit errors are non-fatal: some servers drop the connection right
	// after accepting DATA.
	_ = client.Quit()
	return nil
}
