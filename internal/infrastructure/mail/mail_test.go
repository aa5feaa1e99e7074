package mail

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceportal/backend/internal/application/invoicing"
)

func TestBuildMIME(t *testing.T) {
	t.Run("plain html message without attachments", func(t *testing.T) {
		msg := BuildMIME(invoicing.Email{
			To:       "finance@example.com",
			Subject:  "Invoice INV-1",
			HTMLBody: "<p>hello</p>",
		})

		assert.Contains(t, msg, "To: finance@example.com\r\n")
		assert.Contains(t, msg, "Subject: Invoice INV-1\r\n")
		assert.Contains(t, msg, "Content-Type: text/html; charset=utf-8")
		assert.Contains(t, msg, "<p>hello</p>")
		assert.NotContains(t, msg, "multipart/mixed")
	})

	t.Run("pdf attachment becomes a base64 multipart section", func(t *testing.T) {
		pdf := []byte("%PDF-1.4 fake content")
		msg := BuildMIME(invoicing.Email{
			To:       "finance@example.com",
			Subject:  "Invoice INV-1",
			HTMLBody: "<p>see attachment</p>",
			Attachments: []invoicing.Attachment{
				{Filename: "INV-1.pdf", Data: pdf},
			},
		})

		assert.Contains(t, msg, "multipart/mixed")
		assert.Contains(t, msg, `Content-Disposition: attachment; filename="INV-1.pdf"`)
		assert.Contains(t, msg, "Content-Transfer-Encoding: base64")
		assert.Contains(t, msg, base64.StdEncoding.EncodeToString(pdf))
		// Closing boundary terminates the message
		assert.True(t, strings.HasSuffix(msg, "--"+mimeBoundary+"--\r\n"))
	})

	t.Run("long attachments wrap at 76 columns", func(t *testing.T) {
		data := make([]byte, 600)
		msg := BuildMIME(invoicing.Email{
			To:          "finance@example.com",
			Subject:     "Invoice",
			HTMLBody:    "x",
			Attachments: []invoicing.Attachment{{Filename: "a.pdf", Data: data}},
		})

		for _, line := range strings.Split(msg, "\r\n") {
			assert.LessOrEqual(t, len(line), 100)
		}
	})

	t.Run("non-ascii subject is q-encoded", func(t *testing.T) {
		msg := BuildMIME(invoicing.Email{
			To:       "finance@example.com",
			Subject:  "Rechnung für Juli",
			HTMLBody: "x",
		})

		assert.Contains(t, msg, "=?utf-8?")
	})
}

func TestEncodeRaw(t *testing.T) {
	raw := EncodeRaw("hello world")

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(decoded))
}

func TestGmailSender_Validation(t *testing.T) {
	s := NewGmailSender(nil)

	t.Run("rejects empty access token", func(t *testing.T) {
		err := s.Send(context.Background(), "", invoicing.Email{To: "a@example.com"})
		assert.Error(t, err)
	})

	t.Run("rejects empty recipient", func(t *testing.T) {
		err := s.Send(context.Background(), "token", invoicing.Email{})
		assert.Error(t, err)
	})
}
