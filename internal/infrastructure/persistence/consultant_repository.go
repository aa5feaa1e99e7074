package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/shared"
)

// GormConsultantRepository implements consultant.Repository using GORM
type GormConsultantRepository struct {
	db *gorm.DB
}

// NewGormConsultantRepository creates a new GormConsultantRepository
func NewGormConsultantRepository(db *gorm.DB) *GormConsultantRepository {
	return &GormConsultantRepository{db: db}
}

// Save inserts or updates a consultant
func (r *GormConsultantRepository) Save(ctx context.Context, c *consultant.Consultant) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// FindByID finds a consultant by its primary key
func (r *GormConsultantRepository) FindByID(ctx context.Context, id string) (*consultant.Consultant, error) {
	var c consultant.Consultant
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByConsultantID finds a consultant by the business-assigned code
func (r *GormConsultantRepository) FindByConsultantID(ctx context.Context, consultantID string) (*consultant.Consultant, error) {
	if consultantID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Consultant identifier cannot be empty")
	}
	var c consultant.Consultant
	if err := r.db.WithContext(ctx).Where("consultant_id = ?", consultantID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByEmail finds a consultant by the login email
func (r *GormConsultantRepository) FindByEmail(ctx context.Context, email string) (*consultant.Consultant, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Email cannot be empty")
	}
	var c consultant.Consultant
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByConsultantIDs returns consultants matching any of the given codes
func (r *GormConsultantRepository) FindByConsultantIDs(ctx context.Context, consultantIDs []string) ([]consultant.Consultant, error) {
	if len(consultantIDs) == 0 {
		return nil, nil
	}
	var consultants []consultant.Consultant
	if err := r.db.WithContext(ctx).Where("consultant_id IN ?", consultantIDs).Find(&consultants).Error; err != nil {
		return nil, err
	}
	return consultants, nil
}

// FindAll returns every consultant ordered by name
func (r *GormConsultantRepository) FindAll(ctx context.Context) ([]consultant.Consultant, error) {
	var consultants []consultant.Consultant
	if err := r.db.WithContext(ctx).Order("name asc").Find(&consultants).Error; err != nil {
		return nil, err
	}
	return consultants, nil
}

// DeleteByEmail removes the consultant row keyed by the given email. Deleting
// a missing row is not an error.
func (r *GormConsultantRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		Delete(&consultant.Consultant{}).Error
}

// InTx runs fn against a repository bound to one transaction
func (r *GormConsultantRepository) InTx(ctx context.Context, fn func(consultant.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormConsultantRepository(tx))
	})
}
