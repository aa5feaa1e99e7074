// Package mail dispatches invoice and reminder email through the Gmail API
// using the caller's own OAuth access token.
package mail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"github.com/invoiceportal/backend/internal/application/invoicing"
)

const mimeBoundary = "invoice-portal-boundary"

// BuildMIME assembles an RFC 2045 multipart/mixed message. PDF attachments
// are base64-encoded in 76-column lines.
func BuildMIME(email invoicing.Email) string {
	var b strings.Builder

	b.WriteString("To: " + email.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", email.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(email.Attachments) == 0 {
		b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
		b.WriteString(email.HTMLBody)
		b.WriteString("\r\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mimeBoundary))

	b.WriteString("--" + mimeBoundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(email.HTMLBody)
	b.WriteString("\r\n")

	for _, att := range email.Attachments {
		b.WriteString("--" + mimeBoundary + "\r\n")
		b.WriteString("Content-Type: application/pdf\r\n")
		b.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=%q\r\n", att.Filename))
		b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")
		b.WriteString(wrapBase64(base64.StdEncoding.EncodeToString(att.Data)))
		b.WriteString("\r\n")
	}

	b.WriteString("--" + mimeBoundary + "--\r\n")
	return b.String()
}

// EncodeRaw produces the base64url form the Gmail API expects in Message.Raw.
func EncodeRaw(mimeMessage string) string {
	return base64.URLEncoding.EncodeToString([]byte(mimeMessage))
}

func wrapBase64(s string) string {
	const lineLen = 76
	var b strings.Builder
	for len(s) > lineLen {
		b.WriteString(s[:lineLen])
		b.WriteString("\r\n")
		s = s[lineLen:]
	}
	b.WriteString(s)
	return b.String()
}
