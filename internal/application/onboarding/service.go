// Package onboarding binds signed-in identities to consultant records and
// completes their profiles.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/shared"
)

// ProfileInput carries the fields a consultant submits when completing
// onboarding. All fields except ConsultantID are optional.
type ProfileInput struct {
	ConsultantID    string `json:"consultant_id" binding:"required"`
	Name            string `json:"name"`
	PAN             string `json:"pan"`
	GSTIN           string `json:"gstin"`
	BankBeneficiary string `json:"bank_beneficiary"`
	BankName        string `json:"bank_name"`
	BankAccount     string `json:"bank_account"`
	BankIFSC        string `json:"bank_ifsc"`
}

// Service resolves the consultant behind a session and merges onboarding
// submissions into the right record.
type Service struct {
	consultants consultant.Repository
	logger      *zap.Logger
}

// NewService creates a new onboarding Service
func NewService(consultants consultant.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{consultants: consultants, logger: logger}
}

// Me returns the consultant bound to the session email, provisioning a fresh
// record on first sight.
func (s *Service) Me(ctx context.Context, email, name string) (*consultant.Consultant, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.consultants.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := consultant.New(email, name)
	if err != nil {
		return nil, err
	}
	if err := s.consultants.Save(ctx, fresh); err != nil {
		return nil, err
	}
	s.logger.Info("consultant auto-provisioned", zap.String("email", email))
	return fresh, nil
}

// Complete merges an onboarding submission. When the submitted identifier
// belongs to an unclaimed placeholder, the caller's auto-provisioned row is
// folded into it so payroll history attaches to the right account.
func (s *Service) Complete(ctx context.Context, callerEmail string, input ProfileInput) (*consultant.Consultant, error) {
	callerEmail = strings.ToLower(strings.TrimSpace(callerEmail))

	var merged *consultant.Consultant
	err := s.consultants.InTx(ctx, func(repo consultant.Repository) error {
		target, err := repo.FindByConsultantID(ctx, input.ConsultantID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			merged, err = s.claimOwnRow(ctx, repo, callerEmail, input)
			return err
		case err != nil:
			return err
		}

		if target.IsPlaceholder() {
			merged, err = s.claimPlaceholder(ctx, repo, target, callerEmail, input)
			return err
		}
		if !strings.EqualFold(target.Email, callerEmail) {
			return shared.NewDomainError("IDENTIFIER_CONFLICT",
				fmt.Sprintf("Consultant identifier %q is already registered to another account", input.ConsultantID))
		}

		applyProfile(target, input)
		merged = target
		return repo.Save(ctx, target)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("onboarding completed",
		zap.String("email", callerEmail),
		zap.String("consultant_id", merged.ConsultantID))
	return merged, nil
}

// claimOwnRow handles an identifier nobody has used yet: the caller's own
// record simply adopts it.
func (s *Service) claimOwnRow(ctx context.Context, repo consultant.Repository, callerEmail string, input ProfileInput) (*consultant.Consultant, error) {
	self, err := repo.FindByEmail(ctx, callerEmail)
	if errors.Is(err, shared.ErrNotFound) {
		self, err = consultant.New(callerEmail, input.Name)
	}
	if err != nil {
		return nil, err
	}
	if err := self.SetIdentifier(input.ConsultantID); err != nil {
		return nil, err
	}
	applyProfile(self, input)
	if err := repo.Save(ctx, self); err != nil {
		return nil, err
	}
	return self, nil
}

// claimPlaceholder folds the caller into an import-created placeholder. The
// caller's auto-provisioned row must go first so the unique email constraint
// is free for the claim.
func (s *Service) claimPlaceholder(ctx context.Context, repo consultant.Repository, target *consultant.Consultant, callerEmail string, input ProfileInput) (*consultant.Consultant, error) {
	if err := repo.DeleteByEmail(ctx, callerEmail); err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if err := target.Claim(callerEmail); err != nil {
		return nil, err
	}
	applyProfile(target, input)
	if err := repo.Save(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func applyProfile(c *consultant.Consultant, input ProfileInput) {
	c.UpdateProfile(input.Name, input.PAN, input.GSTIN)
	if input.BankBeneficiary != "" || input.BankName != "" || input.BankAccount != "" || input.BankIFSC != "" {
		c.SetBankDetails(input.BankBeneficiary, input.BankName, input.BankAccount, input.BankIFSC)
	}
}
