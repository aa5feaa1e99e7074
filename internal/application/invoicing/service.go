// Package invoicing drives the invoice lifecycle: listing, status changes,
// document rendering and dispatch to finance.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
	"github.com/invoiceportal/backend/internal/domain/shared"
)

// ConsultantSummary is the display block attached to invoices in admin
// listings. The bank account is always masked.
type ConsultantSummary struct {
	ConsultantID      string `json:"consultant_id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	MaskedBankAccount string `json:"bank_account,omitempty"`
	Onboarded         bool   `json:"onboarded"`
}

// InvoiceView is an invoice enriched for API responses.
type InvoiceView struct {
	invoice.Invoice
	NetPayable string             `json:"net_payable"`
	Consultant *ConsultantSummary `json:"consultant,omitempty"`
}

// Option configures the Service
type Option func(*Service)

// WithKeyPrefix sets the document-store key prefix for stored PDFs.
func WithKeyPrefix(prefix string) Option {
	return func(s *Service) { s.keyPrefix = strings.Trim(prefix, "/") }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// Service implements the invoice operations of the portal.
type Service struct {
	invoices    invoice.Repository
	consultants consultant.Repository
	renderer    InvoiceRenderer
	store       DocumentStore
	mailer      MailSender

	financeEmail string
	keyPrefix    string
	logger       *zap.Logger
}

// NewService creates a new invoicing Service
func NewService(
	invoices invoice.Repository,
	consultants consultant.Repository,
	renderer InvoiceRenderer,
	store DocumentStore,
	mailer MailSender,
	financeEmail string,
	opts ...Option,
) *Service {
	s := &Service{
		invoices:     invoices,
		consultants:  consultants,
		renderer:     renderer,
		store:        store,
		mailer:       mailer,
		financeEmail: financeEmail,
		keyPrefix:    "invoices",
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the actor's invoices, or every invoice with consultant display
// fields when the actor is an admin.
func (s *Service) List(ctx context.Context, actor *consultant.Consultant) ([]InvoiceView, error) {
	if actor.IsAdmin {
		return s.listAll(ctx)
	}

	// A consultant who has not onboarded owns no identifier yet, so no
	// payroll rows can be theirs.
	if actor.ConsultantID == "" {
		return []InvoiceView{}, nil
	}
	invoices, err := s.invoices.FindByConsultantID(ctx, actor.ConsultantID)
	if err != nil {
		return nil, err
	}

	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		views = append(views, InvoiceView{Invoice: inv, NetPayable: inv.NetPayable().StringFixed(2)})
	}
	return views, nil
}

func (s *Service) listAll(ctx context.Context) ([]InvoiceView, error) {
	invoices, err := s.invoices.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(invoices))
	seen := make(map[string]bool)
	for _, inv := range invoices {
		if !seen[inv.ConsultantID] {
			seen[inv.ConsultantID] = true
			ids = append(ids, inv.ConsultantID)
		}
	}
	owners, err := s.consultants.FindByConsultantIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*consultant.Consultant, len(owners))
	for i := range owners {
		byID[owners[i].ConsultantID] = &owners[i]
	}

	views := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		view := InvoiceView{Invoice: inv, NetPayable: inv.NetPayable().StringFixed(2)}
		if owner, ok := byID[inv.ConsultantID]; ok {
			view.Consultant = &ConsultantSummary{
				ConsultantID:      owner.ConsultantID,
				Name:              owner.Name,
				Email:             displayEmail(owner),
				MaskedBankAccount: owner.MaskedBankAccount(),
				Onboarded:         owner.HasCompleteProfile(),
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one invoice; only its owner or an admin may see it.
func (s *Service) Get(ctx context.Context, actor *consultant.Consultant, id string) (*InvoiceView, error) {
	inv, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &InvoiceView{Invoice: *inv, NetPayable: inv.NetPayable().StringFixed(2)}, nil
}

// Document returns the PDF bytes and download filename for an invoice. Sent
// and settled invoices serve the stored copy when one exists; everything else
// is rendered on demand.
func (s *Service) Document(ctx context.Context, actor *consultant.Consultant, id string) ([]byte, string, error) {
	inv, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	filename := inv.InvoiceNo + ".pdf"

	if inv.PDFPath != "" && (inv.Status == invoice.StatusSent || inv.Status == invoice.StatusPaid) {
		data, err := s.store.Download(ctx, inv.PDFPath)
		if err == nil {
			return data, filename, nil
		}
		s.logger.Warn("stored invoice document unavailable, rendering fresh",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("pdf_path", inv.PDFPath),
			zap.Error(err))
	}

	data, err := s.render(ctx, inv)
	if err != nil {
		return nil, "", err
	}
	return data, filename, nil
}

// UpdateStatus applies an administrative status change.
func (s *Service) UpdateStatus(ctx context.Context, actor *consultant.Consultant, id string, target invoice.Status) (*InvoiceView, error) {
	if !actor.IsAdmin {
		return nil, shared.ErrForbidden
	}
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := inv.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice status updated",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("status", string(target)),
		zap.String("actor", actor.Email))
	return &InvoiceView{Invoice: *inv, NetPayable: inv.NetPayable().StringFixed(2)}, nil
}

// Send renders the invoice, archives the PDF and emails it to finance using
// the caller's mail-provider token. Only the owning consultant may send.
func (s *Service) Send(ctx context.Context, actor *consultant.Consultant, id, accessToken string) (*InvoiceView, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ConsultantID == "" || inv.ConsultantID != actor.ConsultantID {
		return nil, shared.ErrForbidden
	}
	if err := inv.CanSend(); err != nil {
		return nil, err
	}

	pdf, err := s.render(ctx, inv)
	if err != nil {
		return nil, err
	}

	// Archival failure must not block the send; the document endpoint can
	// re-render later.
	key := fmt.Sprintf("%s/%s/%s.pdf", s.keyPrefix, inv.ConsultantID, inv.InvoiceNo)
	if err := s.store.Upload(ctx, key, pdf, "application/pdf"); err != nil {
		s.logger.Warn("invoice document upload failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("key", key),
			zap.Error(err))
		key = ""
	}

	body, err := RenderInvoiceBody(InvoiceBodyData{
		InvoiceNo:     inv.InvoiceNo,
		BillingPeriod: inv.BillingPeriod,
		NetPayable:    inv.NetPayable().StringFixed(2),
		Name:          actor.Name,
		ConsultantID:  inv.ConsultantID,
	})
	if err != nil {
		return nil, err
	}

	email := Email{
		To:       s.financeEmail,
		Subject:  fmt.Sprintf("Invoice %s - %s - %s", inv.InvoiceNo, inv.BillingPeriod, actor.Name),
		HTMLBody: body,
		Attachments: []Attachment{
			{Filename: inv.InvoiceNo + ".pdf", Data: pdf},
		},
	}
	if err := s.mailer.Send(ctx, accessToken, email); err != nil {
		inv.MarkError()
		if saveErr := s.invoices.Save(ctx, inv); saveErr != nil {
			s.logger.Error("failed to record send failure",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(saveErr))
		}
		s.logger.Warn("invoice dispatch failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("UPSTREAM_ERROR",
			fmt.Sprintf("Mail provider rejected the send: %s", err.Error()))
	}

	if err := inv.MarkSent(key); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("invoice sent to finance",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_no", inv.InvoiceNo),
		zap.String("consultant_id", inv.ConsultantID))
	return &InvoiceView{Invoice: *inv, NetPayable: inv.NetPayable().StringFixed(2)}, nil
}

// ReminderInput identifies one reminder recipient.
type ReminderInput struct {
	Email  string `json:"email" binding:"required,email"`
	Name   string `json:"name"`
	Period string `json:"period" binding:"required"`
}

// Remind emails a submission reminder to a consultant. Admin only; the mail
// goes out under the admin's own provider token.
func (s *Service) Remind(ctx context.Context, actor *consultant.Consultant, accessToken string, input ReminderInput) error {
	if !actor.IsAdmin {
		return shared.ErrForbidden
	}

	name := input.Name
	if name == "" {
		name = "there"
	}
	body, err := RenderReminderBody(ReminderBodyData{Name: name, Period: input.Period})
	if err != nil {
		return err
	}

	email := Email{
		To:       input.Email,
		Subject:  fmt.Sprintf("Reminder: invoice for %s", input.Period),
		HTMLBody: body,
	}
	if err := s.mailer.Send(ctx, accessToken, email); err != nil {
		s.logger.Warn("reminder dispatch failed",
			zap.String("to", input.Email),
			zap.Error(err))
		return shared.NewDomainError("UPSTREAM_ERROR",
			fmt.Sprintf("Mail provider rejected the send: %s", err.Error()))
	}

	s.logger.Info("reminder sent",
		zap.String("to", input.Email),
		zap.String("period", input.Period),
		zap.String("actor", actor.Email))
	return nil
}

// authorize loads an invoice and checks the actor may access it.
func (s *Service) authorize(ctx context.Context, actor *consultant.Consultant, id string) (*invoice.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && (actor.ConsultantID == "" || inv.ConsultantID != actor.ConsultantID) {
		return nil, shared.ErrForbidden
	}
	return inv, nil
}

// render produces the PDF for an invoice, looking up the owner for the
// letterhead block.
func (s *Service) render(ctx context.Context, inv *invoice.Invoice) ([]byte, error) {
	owner, err := s.consultants.FindByConsultantID(ctx, inv.ConsultantID)
	if errors.Is(err, shared.ErrNotFound) {
		owner = &consultant.Consultant{ConsultantID: inv.ConsultantID, Name: inv.ConsultantID}
	} else if err != nil {
		return nil, err
	}
	return s.renderer.RenderInvoicePDF(ctx, inv, owner)
}

// displayEmail hides the sentinel address of unclaimed placeholder rows.
func displayEmail(c *consultant.Consultant) string {
	if c.IsPlaceholder() {
		return ""
	}
	return c.Email
}
