package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/invoiceportal/backend/internal/domain/shared"
)

// Status is the invoice lifecycle state
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusError   Status = "error"
)

// IsValid reports whether s is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSent, StatusPaid, StatusError:
		return true
	}
	return false
}

// Amounts carries the monetary columns of a payroll row.
type Amounts struct {
	ProfessionalFee decimal.Decimal
	Incentive       decimal.Decimal
	Variable        decimal.Decimal
	TDS             decimal.Decimal
	Reimbursement   decimal.Decimal
}

// DayCounts carries the attendance columns of a payroll row.
type DayCounts struct {
	TotalDays      int
	WorkingDays    int
	LOPDays        int
	NetPayableDays int
}

// Invoice is the aggregate for one billing-period invoice. The natural key is
// (ConsultantID, InvoiceNo); re-imports overwrite the figures in place.
type Invoice struct {
	shared.BaseEntity
	ConsultantID    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_consultant_invoice_no,priority:1" json:"consultant_id"`
	InvoiceNo       string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_invoices_consultant_invoice_no,priority:2" json:"invoice_no"`
	BillingPeriod   string          `gorm:"type:varchar(50);not null" json:"billing_period"`
	ProfessionalFee decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"professional_fee"`
	Incentive       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"incentive"`
	Variable        decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"variable"`
	TDS             decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"tds"`
	Reimbursement   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"reimbursement"`
	TotalDays       int             `gorm:"not null;default:0" json:"total_days"`
	WorkingDays     int             `gorm:"not null;default:0" json:"working_days"`
	LOPDays         int             `gorm:"not null;default:0" json:"lop_days"`
	NetPayableDays  int             `gorm:"not null;default:0" json:"net_payable_days"`
	Status          Status          `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	PDFPath         string          `gorm:"type:varchar(500)" json:"pdf_path"`
	SentAt          *time.Time      `json:"sent_at"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// New creates a pending invoice from an imported payroll row.
func New(consultantID, invoiceNo, billingPeriod string, amounts Amounts, days DayCounts) (*Invoice, error) {
	if consultantID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice consultant identifier cannot be empty")
	}
	if invoiceNo == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if billingPeriod == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Billing period cannot be empty")
	}
	for _, a := range []decimal.Decimal{amounts.ProfessionalFee, amounts.Incentive, amounts.Variable, amounts.TDS, amounts.Reimbursement} {
		if a.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invoice amounts cannot be negative")
		}
	}
	return &Invoice{
		BaseEntity:      shared.NewBaseEntity(),
		ConsultantID:    consultantID,
		InvoiceNo:       invoiceNo,
		BillingPeriod:   billingPeriod,
		ProfessionalFee: amounts.ProfessionalFee,
		Incentive:       amounts.Incentive,
		Variable:        amounts.Variable,
		TDS:             amounts.TDS,
		Reimbursement:   amounts.Reimbursement,
		TotalDays:       days.TotalDays,
		WorkingDays:     days.WorkingDays,
		LOPDays:         days.LOPDays,
		NetPayableDays:  days.NetPayableDays,
		Status:          StatusPending,
	}, nil
}

// NetPayable recomputes the payable total from the stored components:
// fee + incentive + variable - tds + reimbursement. It is never persisted.
func (i *Invoice) NetPayable() decimal.Decimal {
	return i.ProfessionalFee.
		Add(i.Incentive).
		Add(i.Variable).
		Sub(i.TDS).
		Add(i.Reimbursement)
}

// CanSend reports whether the send path may start from the current state.
// A failed send (error) may be retried; a paid invoice is settled.
func (i *Invoice) CanSend() error {
	switch i.Status {
	case StatusSent:
		return shared.ErrAlreadySent
	case StatusPaid:
		return shared.NewDomainError("INVALID_STATE", "Invoice is already settled")
	}
	return nil
}

// MarkSent records a successful dispatch to finance.
func (i *Invoice) MarkSent(pdfPath string) error {
	if err := i.CanSend(); err != nil {
		return err
	}
	now := time.Now()
	i.Status = StatusSent
	i.SentAt = &now
	if pdfPath != "" {
		i.PDFPath = pdfPath
	}
	i.UpdatedAt = now
	return nil
}

// MarkError records a failed dispatch attempt.
func (i *Invoice) MarkError() {
	i.Status = StatusError
	i.UpdatedAt = time.Now()
}

// TransitionTo applies an administrative status change. Paid is terminal:
// settled invoices never move back.
func (i *Invoice) TransitionTo(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Unknown invoice status")
	}
	if i.Status == StatusPaid && target != StatusPaid {
		return shared.NewDomainError("INVALID_STATE", "A settled invoice cannot change status")
	}
	if target == i.Status {
		return nil
	}
	i.Status = target
	if target == StatusPending {
		i.SentAt = nil
	}
	i.UpdatedAt = time.Now()
	return nil
}

// ApplyImport overwrites the figures from a re-imported payroll row and
// resets the lifecycle to pending.
func (i *Invoice) ApplyImport(billingPeriod string, amounts Amounts, days DayCounts) {
	i.BillingPeriod = billingPeriod
	i.ProfessionalFee = amounts.ProfessionalFee
	i.Incentive = amounts.Incentive
	i.Variable = amounts.Variable
	i.TDS = amounts.TDS
	i.Reimbursement = amounts.Reimbursement
	i.TotalDays = days.TotalDays
	i.WorkingDays = days.WorkingDays
	i.LOPDays = days.LOPDays
	i.NetPayableDays = days.NetPayableDays
	i.Status = StatusPending
	i.SentAt = nil
	i.UpdatedAt = time.Now()
}
