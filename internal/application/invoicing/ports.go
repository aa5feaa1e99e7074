package invoicing

import (
	"context"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
)

// DocumentStore is the object store for rendered invoice PDFs.
type DocumentStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// InvoiceRenderer produces the printable PDF for an invoice.
type InvoiceRenderer interface {
	RenderInvoicePDF(ctx context.Context, inv *invoice.Invoice, c *consultant.Consultant) ([]byte, error)
}

// Attachment is a file carried by an outbound email.
type Attachment struct {
	Filename string
	Data     []byte
}

// Email is an outbound message. The sender address is decided by the mail
// provider from the caller's access token.
type Email struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// MailSender dispatches email on behalf of the authenticated consultant,
// using the provider access token they supplied with the request.
type MailSender interface {
	Send(ctx context.Context, accessToken string, email Email) error
}
