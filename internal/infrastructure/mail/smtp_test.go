package mail

import (
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func newTestNotifier(t *testing.T, send sendFunc) *SMTPNotifier {
	t.Helper()
	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.test", Port: 2525, User: "user", Password: "pass"})
	require.NoError(t, err)
	n.send = send
	return n
}

func TestSMTPNotifier_Send(t *testing.T) {
	var got capturedMail
	n := newTestNotifier(t, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		got = capturedMail{addr: addr, from: from, to: to, msg: msg}
		return nil
	})

	require.NoError(t, n.Send(context.Background(), "a@x.com", "0042"))

	assert.Equal(t, "smtp.test:2525", got.addr)
	assert.Equal(t, "no-reply@peerrent.com", got.from)
	assert.Equal(t, []string{"a@x.com"}, got.to)

	parsed, err := mail.ReadMessage(strings.NewReader(string(got.msg)))
	require.NoError(t, err)
	assert.Equal(t, "Your PeerRent Login Code", parsed.Header.Get("Subject"))
	assert.Equal(t, "a@x.com", parsed.Header.Get("To"))

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(parsed.Body, params["boundary"])
	var parts []string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		body, _ := io.ReadAll(p)
		parts = append(parts, p.Header.Get("Content-Type")+"|"+string(body))
	}
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "text/plain")
	assert.Contains(t, parts[0], "Your temporary login code is: 0042")
	assert.Contains(t, parts[0], "expire in 10 minutes")
	assert.Contains(t, parts[1], "text/html")
	assert.Contains(t, parts[1], "<b>Your temporary login code is: 0042</b>")
}

func TestSMTPNotifier_SendError(t *testing.T) {
	n := newTestNotifier(t, func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("550 mailbox unavailable")
	})
	err := n.Send(context.Background(), "a@x.com", "0042")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "550")
}

func TestSMTPNotifier_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	n := newTestNotifier(t, func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := n.Send(ctx, "a@x.com", "0042")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSMTPNotifier_RejectsHeaderInjection(t *testing.T) {
	called := false
	n := newTestNotifier(t, func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	})
	err := n.Send(context.Background(), "a@x.com\r\nBcc: b@x.com", "0042")
	assert.Error(t, err)
	assert.False(t, called)
}

func TestNewSMTPNotifier_Validation(t *testing.T) {
	_, err := NewSMTPNotifier(SMTPConfig{})
	assert.Error(t, err)

	_, err = NewSMTPNotifier(SMTPConfig{Host: "smtp.test", From: "not an address"})
	assert.Error(t, err)

	n, err := NewSMTPNotifier(SMTPConfig{Host: "smtp.test", Port: 25})
	require.NoError(t, err)
	assert.Nil(t, n.auth, "no auth without a user")
}
