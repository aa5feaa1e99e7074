package printing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
)

func testInvoice(t *testing.T) *invoice.Invoice {
	t.Helper()
	inv, err := invoice.New("EMP001", "INV-2025-07-001", "July 2025",
		invoice.Amounts{
			ProfessionalFee: decimal.NewFromInt(100000),
			Incentive:       decimal.NewFromInt(5000),
			TDS:             decimal.NewFromInt(10000),
		},
		invoice.DayCounts{TotalDays: 31, WorkingDays: 22, NetPayableDays: 22},
	)
	require.NoError(t, err)
	return inv
}

func testConsultant(t *testing.T) *consultant.Consultant {
	t.Helper()
	c, err := consultant.NewFromImport("EMP001", "jane@example.com", "Jane Doe", "ABCDE1234F", "")
	require.NoError(t, err)
	c.SetBankDetails("Jane Doe", "State Bank", "123456789012", "SBIN0000123")
	return c
}

func TestRenderInvoiceHTML(t *testing.T) {
	t.Run("renders document with recomputed net payable", func(t *testing.T) {
		html, err := RenderInvoiceHTML(testInvoice(t), testConsultant(t))

		require.NoError(t, err)
		assert.Contains(t, html, "Invoice INV-2025-07-001")
		assert.Contains(t, html, "July 2025")
		assert.Contains(t, html, "Jane Doe")
		// 100000 + 5000 - 10000
		assert.Contains(t, html, "95000.00")
		assert.Contains(t, html, "SBIN0000123")
	})

	t.Run("omits empty optional blocks", func(t *testing.T) {
		c := testConsultant(t)
		c.GSTIN = ""
		c.BankAccount = ""

		html, err := RenderInvoiceHTML(testInvoice(t), c)

		require.NoError(t, err)
		assert.NotContains(t, html, "GSTIN:")
		assert.NotContains(t, html, "Bank transfer details")
	})

	t.Run("escapes markup in imported values", func(t *testing.T) {
		c := testConsultant(t)
		c.Name = "<script>alert(1)</script>"

		html, err := RenderInvoiceHTML(testInvoice(t), c)

		require.NoError(t, err)
		assert.NotContains(t, html, "<script>alert(1)</script>")
	})
}

func TestChromedpRenderer_Validation(t *testing.T) {
	t.Run("rejects empty HTML without touching the browser", func(t *testing.T) {
		r, err := NewChromedpRenderer(&ChromedpConfig{})
		require.NoError(t, err)
		defer r.Close()

		_, err = r.Render(context.Background(), &RenderRequest{HTML: "   "})

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidHTML, renderErr.Code)
	})

	t.Run("rejects nil request", func(t *testing.T) {
		r, err := NewChromedpRenderer(nil)
		require.NoError(t, err)
		defer r.Close()

		_, err = r.Render(context.Background(), nil)

		assert.Error(t, err)
	})
}
