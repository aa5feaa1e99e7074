package consultant

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/invoiceportal/backend/internal/domain/shared"
)

// Sentinel contact-address pattern for placeholder consultants created during
// payroll import, before the consultant has ever signed in.
const (
	placeholderPrefix = "pending-"
	placeholderDomain = "@placeholder.internal"
)

var (
	codePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Consultant is the aggregate root for consultant profiles. The email is the
// binding key to the external identity provider; ConsultantID is the
// business-assigned code and may be empty until onboarding completes.
type Consultant struct {
	shared.BaseEntity
	ConsultantID    string `gorm:"type:varchar(50);index" json:"consultant_id"`
	Email           string `gorm:"type:varchar(200);not null;uniqueIndex" json:"email"`
	Name            string `gorm:"type:varchar(200)" json:"name"`
	PAN             string `gorm:"type:varchar(20)" json:"pan"`
	GSTIN           string `gorm:"type:varchar(20)" json:"gstin"`
	BankBeneficiary string `gorm:"type:varchar(200)" json:"bank_beneficiary"`
	BankName        string `gorm:"type:varchar(100)" json:"bank_name"`
	BankAccount     string `gorm:"type:varchar(50)" json:"bank_account"`
	BankIFSC        string `gorm:"type:varchar(20)" json:"bank_ifsc"`
	IsAdmin         bool   `gorm:"not null;default:false" json:"is_admin"`
}

// TableName returns the table name for GORM
func (Consultant) TableName() string {
	return "consultants"
}

// PlaceholderEmail derives the deterministic sentinel address for a
// consultant identifier.
func PlaceholderEmail(consultantID string) string {
	return placeholderPrefix + strings.ToLower(consultantID) + placeholderDomain
}

// IsPlaceholderEmail reports whether an address matches the sentinel pattern.
func IsPlaceholderEmail(email string) bool {
	return strings.HasPrefix(email, placeholderPrefix) && strings.HasSuffix(email, placeholderDomain)
}

// New creates a consultant bound to a real contact address. This is the
// first-login auto-provision path: the business code is not known yet.
func New(email, name string) (*Consultant, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		name = emailLocalPart(email)
	}
	return &Consultant{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		Name:       name,
	}, nil
}

// NewPlaceholder creates a speculative consultant row for an identifier seen
// in a payroll upload before the consultant has signed in. The sentinel email
// keeps the row out of every real-consultant lookup until it is claimed.
func NewPlaceholder(consultantID string) (*Consultant, error) {
	if err := validateCode(consultantID); err != nil {
		return nil, err
	}
	return &Consultant{
		BaseEntity:   shared.NewBaseEntity(),
		ConsultantID: consultantID,
		Email:        PlaceholderEmail(consultantID),
		Name:         consultantID,
	}, nil
}

// NewFromImport creates a consultant from an upload row that carried a real
// contact address for an identifier nobody has claimed yet.
func NewFromImport(consultantID, email, name, pan, gstin string) (*Consultant, error) {
	if err := validateCode(consultantID); err != nil {
		return nil, err
	}
	c, err := New(email, name)
	if err != nil {
		return nil, err
	}
	c.ConsultantID = consultantID
	c.PAN = pan
	c.GSTIN = gstin
	return c, nil
}

// IsPlaceholder reports whether this row is a speculative import artifact.
func (c *Consultant) IsPlaceholder() bool {
	return IsPlaceholderEmail(c.Email)
}

// HasCompleteProfile reports whether onboarding has finished: both the
// business code and the primary tax id are known.
func (c *Consultant) HasCompleteProfile() bool {
	return c.ConsultantID != "" && c.PAN != "" && !c.IsPlaceholder()
}

// UpdateProfile merges uploaded profile fields into the record. Empty inputs
// leave the existing value alone; the contact address and admin flag are
// protected and never touched here.
func (c *Consultant) UpdateProfile(name, pan, gstin string) {
	if name != "" {
		c.Name = name
	}
	if pan != "" {
		c.PAN = pan
	}
	if gstin != "" {
		c.GSTIN = gstin
	}
	c.UpdatedAt = time.Now()
}

// Claim binds a real contact address to a placeholder row, replacing the
// sentinel email.
func (c *Consultant) Claim(email string) error {
	if !c.IsPlaceholder() {
		return shared.NewDomainError("INVALID_STATE", "Only a placeholder consultant can be claimed")
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.UpdatedAt = time.Now()
	return nil
}

// SetEmail overwrites the contact address. Used when an import row carries
// the real address for a placeholder.
func (c *Consultant) SetEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.UpdatedAt = time.Now()
	return nil
}

// SetIdentifier assigns the business code during onboarding.
func (c *Consultant) SetIdentifier(consultantID string) error {
	if err := validateCode(consultantID); err != nil {
		return err
	}
	c.ConsultantID = consultantID
	c.UpdatedAt = time.Now()
	return nil
}

// SetBankDetails stores the bank-transfer fields.
func (c *Consultant) SetBankDetails(beneficiary, bankName, account, ifsc string) {
	c.BankBeneficiary = beneficiary
	c.BankName = bankName
	c.BankAccount = account
	c.BankIFSC = ifsc
	c.UpdatedAt = time.Now()
}

// MaskedBankAccount returns the account number reduced to its last four
// digits for admin-facing listings.
func (c *Consultant) MaskedBankAccount() string {
	if len(c.BankAccount) <= 4 {
		return c.BankAccount
	}
	return strings.Repeat("*", len(c.BankAccount)-4) + c.BankAccount[len(c.BankAccount)-4:]
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_INPUT", "Consultant identifier cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_INPUT", "Consultant identifier cannot exceed 50 characters")
	}
	if !codePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Consultant identifier %q can only contain letters, digits, '-' and '_'", code))
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_INPUT", "Email cannot be empty")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Invalid email address %q", email))
	}
	return nil
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
