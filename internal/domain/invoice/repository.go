package invoice

import "context"

// Repository defines the persistence contract for invoices
type Repository interface {
	Save(ctx context.Context, inv *Invoice) error
	FindByID(ctx context.Context, id string) (*Invoice, error)
	FindByConsultantID(ctx context.Context, consultantID string) ([]Invoice, error)
	FindAll(ctx context.Context) ([]Invoice, error)

	// UpsertBatch inserts each invoice or, when (consultant_id, invoice_no)
	// already exists, overwrites its figures and resets it to pending.
	UpsertBatch(ctx context.Context, invoices []*Invoice) ([]Invoice, error)
}
