package mail

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"
)

const (
	DefaultFrom = `"PeerRent" <no-reply@peerrent.com>`
	subject     = "Your PeerRent Login Code"
)

// buildMessage renders the login code email as a multipart/alternative
// message with a plain text and an HTML part.
func buildMessage(from, to, code string, ttl time.Duration) ([]byte, error) {
	minutes := int(ttl.Minutes())
	text := fmt.Sprintf("Your temporary login code is: %s. This code will expire in %d minutes.", code, minutes)
	html := fmt.Sprintf("<b>Your temporary login code is: %s</b><p>This code will expire in %d minutes.</p>", code, minutes)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, part := range []struct{ contentType, content string }{
		{"text/plain; charset=UTF-8", text},
		{"text/html; charset=UTF-8", html},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q", mw.Boundary()),
		"",
		"",
	}

	var msg bytes.Buffer
	msg.WriteString(strings.Join(headers, "\r\n"))
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
