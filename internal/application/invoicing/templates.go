package invoicing

import (
	"bytes"
	"fmt"
	"html/template"
)

var invoiceBodyTemplate = template.Must(template.New("invoice_body").Parse(`<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a1a;">
  <p>Hello Finance team,</p>
  <p>Please find attached my invoice <strong>{{.InvoiceNo}}</strong> for <strong>{{.BillingPeriod}}</strong>.</p>
  <p>Net payable: <strong>INR {{.NetPayable}}</strong></p>
  <p>Regards,<br>{{.Name}}{{if .ConsultantID}} ({{.ConsultantID}}){{end}}</p>
</body>
</html>
`))

var reminderBodyTemplate = template.Must(template.New("reminder_body").Parse(`<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #1a1a1a;">
  <p>Hi {{.Name}},</p>
  <p>This is a gentle reminder that your invoice for <strong>{{.Period}}</strong> has not been submitted yet.</p>
  <p>Please sign in to the portal, review the pre-filled invoice and send it to the finance team.</p>
  <p>Thank you!</p>
</body>
</html>
`))

// InvoiceBodyData is the view model for the invoice email body
type InvoiceBodyData struct {
	InvoiceNo     string
	BillingPeriod string
	NetPayable    string
	Name          string
	ConsultantID  string
}

// RenderInvoiceBody builds the HTML body of the invoice email.
func RenderInvoiceBody(data InvoiceBodyData) (string, error) {
	var buf bytes.Buffer
	if err := invoiceBodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice body: %w", err)
	}
	return buf.String(), nil
}

// ReminderBodyData is the view model for the reminder email body
type ReminderBodyData struct {
	Name   string
	Period string
}

// RenderReminderBody builds the HTML body of the reminder email.
func RenderReminderBody(data ReminderBodyData) (string, error) {
	var buf bytes.Buffer
	if err := reminderBodyTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render reminder body: %w", err)
	}
	return buf.String(), nil
}
