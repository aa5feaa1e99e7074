package payroll

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
	"github.com/invoiceportal/backend/internal/domain/shared"
	"github.com/invoiceportal/backend/internal/infrastructure/persistence"
)

func newTestService(t *testing.T) (*ImportService, consultant.Repository, invoice.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&consultant.Consultant{}, &invoice.Invoice{}))

	database := persistence.NewDatabaseFromGorm(db)
	consultants := persistence.NewGormConsultantRepository(database.DB)
	invoices := persistence.NewGormInvoiceRepository(database.DB)
	return NewImportService(consultants, invoices, nil), consultants, invoices
}

const sampleCSV = `Consultant ID,Invoice No,Billing Period,Professional Fee,Incentive,Variable,TDS,Reimbursement,Total Days,Working Days,LOP Days,Net Payable Days,Email,Name,PAN,GSTIN
EMP001,INV-2025-07-001,July 2025,"1,00,000",5000,2500,10000,1200,31,23,0,23,jane@example.com,Jane Doe,ABCDE1234F,
EMP002,INV-2025-07-002,July 2025,80000,0,0,8000,0,31,22,1,22,,,,`

func TestImportService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("creates consultants and pending invoices", func(t *testing.T) {
		svc, consultants, _ := newTestService(t)

		result, err := svc.Import(ctx, "payroll.csv", strings.NewReader(sampleCSV))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Count)
		assert.Len(t, result.Invoices, 2)
		assert.Equal(t, 1, result.PlaceholdersCreated)

		jane, err := consultants.FindByConsultantID(ctx, "EMP001")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", jane.Email)
		assert.Equal(t, "Jane Doe", jane.Name)
		assert.Equal(t, "ABCDE1234F", jane.PAN)
		assert.False(t, jane.IsPlaceholder())

		ghost, err := consultants.FindByConsultantID(ctx, "EMP002")
		require.NoError(t, err)
		assert.True(t, ghost.IsPlaceholder())

		inv := result.Invoices[0]
		assert.Equal(t, invoice.StatusPending, inv.Status)
		assert.Equal(t, "98700", inv.NetPayable().String())
	})

	t.Run("re-import is idempotent and resets status", func(t *testing.T) {
		svc, _, invoices := newTestService(t)

		first, err := svc.Import(ctx, "payroll.csv", strings.NewReader(sampleCSV))
		require.NoError(t, err)

		// Simulate an invoice being sent between the two uploads.
		sent, err := invoices.FindByID(ctx, first.Invoices[0].ID.String())
		require.NoError(t, err)
		require.NoError(t, sent.MarkSent("some/key.pdf"))
		require.NoError(t, invoices.Save(ctx, sent))

		second, err := svc.Import(ctx, "payroll.csv", strings.NewReader(sampleCSV))
		require.NoError(t, err)
		assert.Equal(t, 2, second.Count)
		assert.Equal(t, 0, second.PlaceholdersCreated)

		all, err := invoices.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		for _, inv := range all {
			assert.Equal(t, invoice.StatusPending, inv.Status)
			assert.Nil(t, inv.SentAt)
		}
	})

	t.Run("missing required columns reject the upload", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		csv := "Consultant ID,Invoice No\nEMP001,INV-1"
		_, err := svc.Import(ctx, "payroll.csv", strings.NewReader(csv))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "MISSING_COLUMNS", domainErr.Code)
		assert.Contains(t, domainErr.Message, "billing_period")
	})

	t.Run("rows without natural keys reject the batch", func(t *testing.T) {
		svc, _, invoices := newTestService(t)

		csv := `consultant_id,invoice_no,billing_period,professional_fee,tds,total_days,working_days,net_payable_days
EMP001,INV-1,July 2025,1000,100,31,22,22
EMP002,,July 2025,1000,100,31,22,22`
		_, err := svc.Import(ctx, "payroll.csv", strings.NewReader(csv))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_ROWS", domainErr.Code)
		assert.Contains(t, domainErr.Message, "3")

		all, err := invoices.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("identifier owned by another email aborts", func(t *testing.T) {
		svc, consultants, _ := newTestService(t)

		owner, err := consultant.NewFromImport("EMP001", "owner@example.com", "Owner", "", "")
		require.NoError(t, err)
		require.NoError(t, consultants.Save(ctx, owner))

		csv := `consultant_id,invoice_no,billing_period,professional_fee,tds,total_days,working_days,net_payable_days,email
EMP001,INV-1,July 2025,1000,100,31,22,22,intruder@example.com`
		_, err = svc.Import(ctx, "payroll.csv", strings.NewReader(csv))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "IDENTIFIER_CONFLICT", domainErr.Code)
	})

	t.Run("auto-provisioned account adopts the identifier", func(t *testing.T) {
		svc, consultants, _ := newTestService(t)

		self, err := consultant.New("jane@example.com", "Jane")
		require.NoError(t, err)
		require.NoError(t, consultants.Save(ctx, self))

		_, err = svc.Import(ctx, "payroll.csv", strings.NewReader(sampleCSV))
		require.NoError(t, err)

		merged, err := consultants.FindByConsultantID(ctx, "EMP001")
		require.NoError(t, err)
		assert.Equal(t, self.ID, merged.ID)
		assert.Equal(t, "Jane Doe", merged.Name)

		all, err := consultants.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("placeholder is claimed when a later upload carries the email", func(t *testing.T) {
		svc, consultants, _ := newTestService(t)

		ghost, err := consultant.NewPlaceholder("EMP001")
		require.NoError(t, err)
		require.NoError(t, consultants.Save(ctx, ghost))

		result, err := svc.Import(ctx, "payroll.csv", strings.NewReader(sampleCSV))
		require.NoError(t, err)
		assert.Equal(t, 1, result.PlaceholdersCreated)

		claimed, err := consultants.FindByConsultantID(ctx, "EMP001")
		require.NoError(t, err)
		assert.Equal(t, ghost.ID, claimed.ID)
		assert.Equal(t, "jane@example.com", claimed.Email)
		assert.False(t, claimed.IsPlaceholder())
	})

	t.Run("duplicate natural keys in one file keep the last row", func(t *testing.T) {
		svc, _, invoices := newTestService(t)

		csv := `consultant_id,invoice_no,billing_period,professional_fee,tds,total_days,working_days,net_payable_days
EMP001,INV-1,July 2025,1000,100,31,22,22
EMP001,INV-1,July 2025,2000,200,31,22,22`
		result, err := svc.Import(ctx, "payroll.csv", strings.NewReader(csv))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)

		all, err := invoices.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "2000", all[0].ProfessionalFee.String())
	})

	t.Run("unsupported file type is rejected", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		_, err := svc.Import(ctx, "payroll.pdf", strings.NewReader("x"))
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1,00,000", "100000"},
		{"₹ 5000.50", "5000.5"},
		{"", "0"},
		{"n/a", "0"},
		{"-250", "-250"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAmount(tt.in).String(), "input %q", tt.in)
	}
}

func TestParseDays(t *testing.T) {
	assert.Equal(t, 22, parseDays("22"))
	assert.Equal(t, 22, parseDays("22.5"))
	assert.Equal(t, 0, parseDays(""))
	assert.Equal(t, 0, parseDays("abc"))
}
