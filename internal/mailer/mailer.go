// Package mailer dispatches outbound notification mail over SMTP.
// Sending is fire-and-forget: every send runs in its own goroutine with a
// bounded dial, and failures are logged but never propagated to the caller,
// so a failed welcome mail cannot undo a created account.
package mailer

import (
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/CareerDesk/CareerDesk/internal/config"
)

// Mailer sends mail through a single SMTP relay.
type Mailer struct {
	cfg     config.Mail
	timeout time.Duration
}

// New creates a mailer from config. When mail is disabled the returned
// mailer silently drops every message.
func New(cfg config.Mail, timeout time.Duration) *Mailer {
	return &Mailer{cfg: cfg, timeout: timeout}
}

// Send queues one message. It returns immediately; delivery happens in the
// background and a failure only produces a log entry.
func (m *Mailer) Send(to, subject, body string) {
	if !m.cfg.Enabled {
		return
	}

	go func() {
		if err := m.deliver(to, subject, body); err != nil {
			log.Error().Err(err).Str("to", to).Str("subject", subject).
				Msg("failed to deliver mail")
		}
	}()
}

// deliver opens a bounded SMTP connection and submits the message.
func (m *Mailer) deliver(to, subject, body string) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	conn, err := net.DialTimeout("tcp", addr, m.timeout)
	if err != nil {
		return err
	}

	// bound the whole SMTP conversation, not just the dial
	if err = conn.SetDeadline(time.Now().Add(m.timeout)); err != nil {
		_ = conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = client.Close() }()

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err = client.Auth(auth); err != nil {
			return err
		}
	}

	if err = client.Mail(m.cfg.From); err != nil {
		return err
	}

	if err = client.Rcpt(to); err != nil {
		return err
	}

	writer, err := client.Data()
	if err != nil {
		return err
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, to, subject, body)

	if _, err = writer.Write([]byte(message)); err != nil {
		return err
	}

	if err = writer.Close(); err != nil {
		return err
	}

	return client.Quit()
}
