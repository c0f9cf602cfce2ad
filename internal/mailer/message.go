package mailer

import (
	"encoding/base64"
	"strings"
)

// EncodeMessage builds a text/plain MIME message and encodes it the way
// the Gmail send endpoint expects: base64url over the raw RFC 2822 bytes.
func EncodeMessage(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
