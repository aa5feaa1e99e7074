package consultant

import "context"

// Repository defines the persistence contract for consultants
type Repository interface {
	Save(ctx context.Context, c *Consultant) error
	FindByID(ctx context.Context, id string) (*Consultant, error)
	FindByConsultantID(ctx context.Context, consultantID string) (*Consultant, error)
	FindByEmail(ctx context.Context, email string) (*Consultant, error)
	FindByConsultantIDs(ctx context.Context, consultantIDs []string) ([]Consultant, error)
	FindAll(ctx context.Context) ([]Consultant, error)
	DeleteByEmail(ctx context.Context, email string) error

	// InTx runs fn against a repository bound to a single database
	// transaction; any error rolls the whole unit back.
	InTx(ctx context.Context, fn func(Repository) error) error
}
