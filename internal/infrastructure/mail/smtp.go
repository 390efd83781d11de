package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	CodeTTL  time.Duration
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier delivers login codes through an SMTP relay.
type SMTPNotifier struct {
	cfg      SMTPConfig
	addr     string
	envelope string
	auth     smtp.Auth
	send     sendFunc
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 10 * time.Minute
	}

	from, err := mail.ParseAddress(cfg.From)
	if err != nil {
		return nil, fmt.Errorf("smtp: invalid from address: %w", err)
	}

	n := &SMTPNotifier{
		cfg:      cfg,
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		envelope: from.Address,
		send:     smtp.SendMail,
	}
	if cfg.User != "" {
		n.auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return n, nil
}

// Send implements ports.Notifier. net/smtp has no context support, so the
// transfer runs in its own goroutine and Send returns when ctx is done.
func (n *SMTPNotifier) Send(ctx context.Context, address, code string) error {
	if strings.ContainsAny(address, "\r\n") {
		return fmt.Errorf("smtp: invalid recipient %q", address)
	}

	msg, err := buildMessage(n.cfg.From, address, code, n.cfg.CodeTTL)
	if err != nil {
		return fmt.Errorf("smtp: build message: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- n.send(n.addr, n.auth, n.envelope, []string{address}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp: send: %w", ctx.Err())
	}
}
