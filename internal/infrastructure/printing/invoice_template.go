package printing

import (
	"bytes"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
)

// invoiceDocument is the view model for the invoice HTML template.
type invoiceDocument struct {
	InvoiceNo       string
	BillingPeriod   string
	ConsultantID    string
	Name            string
	Email           string
	PAN             string
	GSTIN           string
	BankBeneficiary string
	BankName        string
	BankAccount     string
	BankIFSC        string
	ProfessionalFee string
	Incentive       string
	Variable        string
	TDS             string
	Reimbursement   string
	NetPayable      string
	TotalDays       int
	WorkingDays     int
	LOPDays         int
	NetPayableDays  int
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; font-size: 13px; }
  h1 { font-size: 22px; margin-bottom: 2px; }
  .muted { color: #666; }
  .section { margin-top: 24px; }
  table { width: 100%; border-collapse: collapse; margin-top: 8px; }
  th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ddd; }
  th { background: #f5f5f5; font-weight: 600; }
  td.amount, th.amount { text-align: right; }
  .total td { font-weight: 700; border-top: 2px solid #1a1a1a; }
</style>
</head>
<body>
  <h1>Invoice {{.InvoiceNo}}</h1>
  <div class="muted">Billing period: {{.BillingPeriod}}</div>

  <div class="section">
    <strong>{{.Name}}</strong> ({{.ConsultantID}})<br>
    {{.Email}}<br>
    {{if .PAN}}PAN: {{.PAN}}<br>{{end}}
    {{if .GSTIN}}GSTIN: {{.GSTIN}}{{end}}
  </div>

  <div class="section">
    <table>
      <tr><th>Description</th><th class="amount">Amount (INR)</th></tr>
      <tr><td>Professional fee</td><td class="amount">{{.ProfessionalFee}}</td></tr>
      <tr><td>Incentive</td><td class="amount">{{.Incentive}}</td></tr>
      <tr><td>Variable</td><td class="amount">{{.Variable}}</td></tr>
      <tr><td>Reimbursement</td><td class="amount">{{.Reimbursement}}</td></tr>
      <tr><td>TDS deducted</td><td class="amount">-{{.TDS}}</td></tr>
      <tr class="total"><td>Net payable</td><td class="amount">{{.NetPayable}}</td></tr>
    </table>
  </div>

  <div class="section">
    <table>
      <tr><th>Total days</th><th>Working days</th><th>LOP days</th><th>Net payable days</th></tr>
      <tr><td>{{.TotalDays}}</td><td>{{.WorkingDays}}</td><td>{{.LOPDays}}</td><td>{{.NetPayableDays}}</td></tr>
    </table>
  </div>

  {{if .BankAccount}}
  <div class="section">
    <table>
      <tr><th colspan="2">Bank transfer details</th></tr>
      <tr><td>Beneficiary</td><td>{{.BankBeneficiary}}</td></tr>
      <tr><td>Bank</td><td>{{.BankName}}</td></tr>
      <tr><td>Account</td><td>{{.BankAccount}}</td></tr>
      <tr><td>IFSC</td><td>{{.BankIFSC}}</td></tr>
    </table>
  </div>
  {{end}}
</body>
</html>
`))

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RenderInvoiceHTML builds the printable invoice document for a consultant's
// invoice. The net payable line is recomputed, never read from storage.
func RenderInvoiceHTML(inv *invoice.Invoice, c *consultant.Consultant) (string, error) {
	doc := invoiceDocument{
		InvoiceNo:       inv.InvoiceNo,
		BillingPeriod:   inv.BillingPeriod,
		ConsultantID:    inv.ConsultantID,
		Name:            c.Name,
		Email:           c.Email,
		PAN:             c.PAN,
		GSTIN:           c.GSTIN,
		BankBeneficiary: c.BankBeneficiary,
		BankName:        c.BankName,
		BankAccount:     c.BankAccount,
		BankIFSC:        c.BankIFSC,
		ProfessionalFee: money(inv.ProfessionalFee),
		Incentive:       money(inv.Incentive),
		Variable:        money(inv.Variable),
		TDS:             money(inv.TDS),
		Reimbursement:   money(inv.Reimbursement),
		NetPayable:      money(inv.NetPayable()),
		TotalDays:       inv.TotalDays,
		WorkingDays:     inv.WorkingDays,
		LOPDays:         inv.LOPDays,
		NetPayableDays:  inv.NetPayableDays,
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
