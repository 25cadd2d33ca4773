package email

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const defaultTimeout = 15 * time.Second

// Config holds the transport and envelope settings for outgoing mail.
type Config struct {
	Host string
	Port int
	User string
	Pass string

	FromEmail string
	FromName  string
	ToEmail   string
	ToName    string

	// Timeout bounds the whole SMTP conversation; expiry is reported as a
	// dispatch failure.
	Timeout time.Duration

	// PGPPublicKeyPath enables PGP/MIME encryption of the outgoing message
	// when set.
	PGPPublicKeyPath string
}

// Sender composes and dispatches submission emails. A successful Send means
// the transport accepted the message for processing, not that it was
// delivered.
type Sender struct {
	cfg    Config
	logger *slog.Logger

	// sendFn is swapped in tests to capture the raw message.
	sendFn func(from string, to []string, raw []byte) error
}

func NewSender(cfg Config, logger *slog.Logger) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	s := &Sender{cfg: cfg, logger: logger}
	s.sendFn = s.sendSMTP
	return s
}

// Send builds the MIME message and hands it to the transport.
func (s *Sender) Send(msg Message) error {
	raw, err := s.buildMessage(msg)
	if err != nil {
		return fmt.Errorf("building message: %w", err)
	}
	return s.sendFn(s.cfg.FromEmail, []string{s.cfg.ToEmail}, raw)
}

// sendSMTP delivers the message over a single SMTP conversation with a
// deadline on the underlying connection. Without a configured host the
// message is logged instead of delivered, which keeps development setups
// working without a relay.
func (s *Sender) sendSMTP(from string, to []string, raw []byte) error {
	if s.cfg.Host == "" {
		s.logger.Info("smtp not configured, message not delivered",
			"to", to, "bytes", len(raw))
		return nil
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	conn, err := net.DialTimeout("tcp", addr, s.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(s.cfg.Timeout)); err != nil {
		conn.Close()
		return fmt.Errorf("setting deadline: %w", err)
	}

	c, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if s.cfg.User != "" {
		auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing data: %w", err)
	}

	return c.Quit()
}
