package onboarding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/shared"
	"github.com/invoiceportal/backend/internal/infrastructure/persistence"
)

func newTestService(t *testing.T) (*Service, consultant.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&consultant.Consultant{}))

	repo := persistence.NewGormConsultantRepository(db)
	return NewService(repo, nil), repo
}

func TestService_Me(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions a record on first sight", func(t *testing.T) {
		svc, repo := newTestService(t)

		c, err := svc.Me(ctx, "Jane@Example.com", "Jane Doe")
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", c.Email)
		assert.Equal(t, "Jane Doe", c.Name)
		assert.Empty(t, c.ConsultantID)

		stored, err := repo.FindByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, c.ID, stored.ID)
	})

	t.Run("returns the existing record on later calls", func(t *testing.T) {
		svc, _ := newTestService(t)

		first, err := svc.Me(ctx, "jane@example.com", "Jane")
		require.NoError(t, err)
		second, err := svc.Me(ctx, "jane@example.com", "Jane Renamed")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Jane", second.Name)
	})
}

func TestService_Complete(t *testing.T) {
	ctx := context.Background()

	input := ProfileInput{
		ConsultantID: "EMP001",
		Name:         "Jane Doe",
		PAN:          "ABCDE1234F",
		BankAccount:  "1234567890",
		BankIFSC:     "HDFC0001234",
	}

	t.Run("unused identifier attaches to the caller's own record", func(t *testing.T) {
		svc, repo := newTestService(t)

		self, err := svc.Me(ctx, "jane@example.com", "Jane")
		require.NoError(t, err)

		merged, err := svc.Complete(ctx, "jane@example.com", input)
		require.NoError(t, err)
		assert.Equal(t, self.ID, merged.ID)
		assert.Equal(t, "EMP001", merged.ConsultantID)
		assert.Equal(t, "ABCDE1234F", merged.PAN)
		assert.True(t, merged.HasCompleteProfile())

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("placeholder is claimed and the duplicate row removed", func(t *testing.T) {
		svc, repo := newTestService(t)

		ghost, err := consultant.NewPlaceholder("EMP001")
		require.NoError(t, err)
		ghost.UpdateProfile("", "IMPRT9999P", "")
		require.NoError(t, repo.Save(ctx, ghost))

		_, err = svc.Me(ctx, "jane@example.com", "Jane")
		require.NoError(t, err)

		merged, err := svc.Complete(ctx, "jane@example.com", ProfileInput{ConsultantID: "EMP001", Name: "Jane Doe"})
		require.NoError(t, err)

		assert.Equal(t, ghost.ID, merged.ID)
		assert.Equal(t, "jane@example.com", merged.Email)
		assert.Equal(t, "Jane Doe", merged.Name)
		// Imported tax data survives the merge
		assert.Equal(t, "IMPRT9999P", merged.PAN)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("identifier held by another real account is rejected", func(t *testing.T) {
		svc, repo := newTestService(t)

		owner, err := consultant.NewFromImport("EMP001", "owner@example.com", "Owner", "", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, owner))

		_, err = svc.Me(ctx, "jane@example.com", "Jane")
		require.NoError(t, err)

		_, err = svc.Complete(ctx, "jane@example.com", input)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "IDENTIFIER_CONFLICT", domainErr.Code)
	})

	t.Run("resubmitting own identifier updates the profile in place", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Me(ctx, "jane@example.com", "Jane")
		require.NoError(t, err)
		first, err := svc.Complete(ctx, "jane@example.com", input)
		require.NoError(t, err)

		update := input
		update.GSTIN = "22ABCDE1234F1Z5"
		second, err := svc.Complete(ctx, "jane@example.com", update)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "22ABCDE1234F1Z5", second.GSTIN)
	})

	t.Run("works before the caller ever hit the profile endpoint", func(t *testing.T) {
		svc, repo := newTestService(t)

		merged, err := svc.Complete(ctx, "jane@example.com", input)
		require.NoError(t, err)
		assert.Equal(t, "EMP001", merged.ConsultantID)

		stored, err := repo.FindByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		assert.Equal(t, merged.ID, stored.ID)
	})

	t.Run("invalid identifier is rejected", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Me(ctx, "jane@example.com", "Jane")
		require.NoError(t, err)

		_, err = svc.Complete(ctx, "jane@example.com", ProfileInput{ConsultantID: "EMP 001"})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}
