package consultant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates consultant from login identity", func(t *testing.T) {
		c, err := New("Jane.Doe@example.com", "Jane Doe")

		require.NoError(t, err)
		assert.NotNil(t, c)
		assert.Equal(t, "jane.doe@example.com", c.Email)
		assert.Equal(t, "Jane Doe", c.Name)
		assert.Empty(t, c.ConsultantID)
		assert.False(t, c.IsAdmin)
		assert.False(t, c.IsPlaceholder())
	})

	t.Run("defaults name to email local part", func(t *testing.T) {
		c, err := New("jane.doe@example.com", "")

		require.NoError(t, err)
		assert.Equal(t, "jane.doe", c.Name)
	})

	t.Run("fails with empty email", func(t *testing.T) {
		c, err := New("", "Jane")

		assert.Error(t, err)
		assert.Nil(t, c)
		assert.Contains(t, err.Error(), "Email cannot be empty")
	})

	t.Run("fails with malformed email", func(t *testing.T) {
		c, err := New("not-an-email", "Jane")

		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestNewPlaceholder(t *testing.T) {
	t.Run("derives deterministic sentinel email", func(t *testing.T) {
		c, err := NewPlaceholder("EMP001")

		require.NoError(t, err)
		assert.Equal(t, "EMP001", c.ConsultantID)
		assert.Equal(t, "pending-emp001@placeholder.internal", c.Email)
		assert.Equal(t, "EMP001", c.Name)
		assert.True(t, c.IsPlaceholder())
	})

	t.Run("same identifier always yields the same sentinel", func(t *testing.T) {
		a, err := NewPlaceholder("C-42")
		require.NoError(t, err)
		b, err := NewPlaceholder("C-42")
		require.NoError(t, err)

		assert.Equal(t, a.Email, b.Email)
	})

	t.Run("fails with empty identifier", func(t *testing.T) {
		c, err := NewPlaceholder("")

		assert.Error(t, err)
		assert.Nil(t, c)
	})

	t.Run("fails with invalid identifier characters", func(t *testing.T) {
		c, err := NewPlaceholder("EMP 001")

		assert.Error(t, err)
		assert.Nil(t, c)
		assert.Contains(t, err.Error(), "can only contain")
	})
}

func TestNewFromImport(t *testing.T) {
	t.Run("creates consultant with identifier and tax ids", func(t *testing.T) {
		c, err := NewFromImport("EMP002", "bob@example.com", "Bob", "ABCDE1234F", "29ABCDE1234F1Z5")

		require.NoError(t, err)
		assert.Equal(t, "EMP002", c.ConsultantID)
		assert.Equal(t, "bob@example.com", c.Email)
		assert.Equal(t, "ABCDE1234F", c.PAN)
		assert.Equal(t, "29ABCDE1234F1Z5", c.GSTIN)
		assert.False(t, c.IsPlaceholder())
	})

	t.Run("fails when email is invalid", func(t *testing.T) {
		c, err := NewFromImport("EMP002", "nope", "Bob", "", "")

		assert.Error(t, err)
		assert.Nil(t, c)
	})
}

func TestClaim(t *testing.T) {
	t.Run("replaces sentinel email on a placeholder", func(t *testing.T) {
		c, err := NewPlaceholder("EMP003")
		require.NoError(t, err)

		err = c.Claim("Real.Person@example.com")

		require.NoError(t, err)
		assert.Equal(t, "real.person@example.com", c.Email)
		assert.False(t, c.IsPlaceholder())
	})

	t.Run("rejects claiming a non-placeholder", func(t *testing.T) {
		c, err := New("owner@example.com", "Owner")
		require.NoError(t, err)

		err = c.Claim("thief@example.com")

		assert.Error(t, err)
		assert.Equal(t, "owner@example.com", c.Email)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("merges only non-empty fields", func(t *testing.T) {
		c, err := NewFromImport("EMP004", "c@example.com", "Carol", "OLDPA1234N", "")
		require.NoError(t, err)

		c.UpdateProfile("", "NEWPA5678N", "29NEWPA5678N1Z1")

		assert.Equal(t, "Carol", c.Name)
		assert.Equal(t, "NEWPA5678N", c.PAN)
		assert.Equal(t, "29NEWPA5678N1Z1", c.GSTIN)
	})

	t.Run("never flips the admin flag", func(t *testing.T) {
		c, err := New("admin@example.com", "Admin")
		require.NoError(t, err)
		c.IsAdmin = true

		c.UpdateProfile("New Name", "PAN", "GST")

		assert.True(t, c.IsAdmin)
	})
}

func TestHasCompleteProfile(t *testing.T) {
	t.Run("placeholder is never complete", func(t *testing.T) {
		c, err := NewPlaceholder("EMP005")
		require.NoError(t, err)
		c.PAN = "ABCDE1234F"

		assert.False(t, c.HasCompleteProfile())
	})

	t.Run("requires identifier and tax id", func(t *testing.T) {
		c, err := New("d@example.com", "Dana")
		require.NoError(t, err)
		assert.False(t, c.HasCompleteProfile())

		require.NoError(t, c.SetIdentifier("EMP006"))
		assert.False(t, c.HasCompleteProfile())

		c.PAN = "ABCDE1234F"
		assert.True(t, c.HasCompleteProfile())
	})
}

func TestMaskedBankAccount(t *testing.T) {
	t.Run("keeps only the last four digits", func(t *testing.T) {
		c, err := New("e@example.com", "Eve")
		require.NoError(t, err)
		c.SetBankDetails("Eve K", "State Bank", "123456789012", "SBIN0000123")

		assert.Equal(t, "********9012", c.MaskedBankAccount())
	})

	t.Run("short numbers pass through", func(t *testing.T) {
		c, err := New("f@example.com", "Finn")
		require.NoError(t, err)
		c.BankAccount = "9012"

		assert.Equal(t, "9012", c.MaskedBankAccount())
	})
}
