package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/invoiceportal/backend/internal/domain/invoice"
	"github.com/invoiceportal/backend/internal/domain/shared"
)

// GormInvoiceRepository implements invoice.Repository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save inserts or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

// FindByID finds an invoice by its primary key
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByConsultantID returns the invoices of one consultant, newest first
func (r *GormInvoiceRepository) FindByConsultantID(ctx context.Context, consultantID string) ([]invoice.Invoice, error) {
	if consultantID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Consultant identifier cannot be empty")
	}
	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).
		Where("consultant_id = ?", consultantID).
		Order("created_at desc").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAll returns every invoice, newest first
func (r *GormInvoiceRepository) FindAll(ctx context.Context) ([]invoice.Invoice, error) {
	var invoices []invoice.Invoice
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// UpsertBatch inserts invoices or, on a (consultant_id, invoice_no) conflict,
// overwrites the imported figures and resets the row to pending.
func (r *GormInvoiceRepository) UpsertBatch(ctx context.Context, invoices []*invoice.Invoice) ([]invoice.Invoice, error) {
	if len(invoices) == 0 {
		return nil, nil
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "consultant_id"}, {Name: "invoice_no"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"billing_period",
			"professional_fee", "incentive", "variable", "tds", "reimbursement",
			"total_days", "working_days", "lop_days", "net_payable_days",
			"status", "sent_at", "updated_at",
		}),
	}).Create(&invoices).Error
	if err != nil {
		return nil, err
	}

	// Re-read by natural key so callers see the persisted rows, including
	// the primary keys of previously existing invoices.
	result := make([]invoice.Invoice, 0, len(invoices))
	for _, in := range invoices {
		var persisted invoice.Invoice
		if err := r.db.WithContext(ctx).
			Where("consultant_id = ? AND invoice_no = ?", in.ConsultantID, in.InvoiceNo).
			First(&persisted).Error; err != nil {
			return nil, err
		}
		result = append(result, persisted)
	}
	return result, nil
}
