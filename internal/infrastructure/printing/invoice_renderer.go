package printing

import (
	"context"

	"github.com/invoiceportal/backend/internal/application/invoicing"
	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
)

// Ensure InvoiceDocumentRenderer implements invoicing.InvoiceRenderer
var _ invoicing.InvoiceRenderer = (*InvoiceDocumentRenderer)(nil)

// InvoiceDocumentRenderer turns an invoice into its printable PDF: template
// to HTML, then Chrome to PDF.
type InvoiceDocumentRenderer struct {
	pdf PDFRenderer
}

// NewInvoiceDocumentRenderer creates a renderer over the given PDF backend
func NewInvoiceDocumentRenderer(pdf PDFRenderer) *InvoiceDocumentRenderer {
	return &InvoiceDocumentRenderer{pdf: pdf}
}

// RenderInvoicePDF renders the invoice document for a consultant's invoice.
func (r *InvoiceDocumentRenderer) RenderInvoicePDF(ctx context.Context, inv *invoice.Invoice, c *consultant.Consultant) ([]byte, error) {
	html, err := RenderInvoiceHTML(inv, c)
	if err != nil {
		return nil, err
	}
	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:  html,
		Title: "Invoice " + inv.InvoiceNo,
	})
	if err != nil {
		return nil, err
	}
	return result.PDFData, nil
}
