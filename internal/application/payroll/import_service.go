// Package payroll turns an uploaded payroll spreadsheet into consultant
// records and pending invoices.
package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
	"github.com/invoiceportal/backend/internal/domain/shared"
	"github.com/invoiceportal/backend/internal/infrastructure/csvimport"
)

// requiredColumns must all be present in the upload header; the rest of the
// known columns are optional.
var requiredColumns = []string{
	"consultant_id", "invoice_no", "billing_period",
	"professional_fee", "tds", "total_days", "working_days", "net_payable_days",
}

// ImportResult summarizes one processed upload
type ImportResult struct {
	Count               int               `json:"count"`
	Invoices            []invoice.Invoice `json:"invoices"`
	PlaceholdersCreated int               `json:"placeholders_created"`
}

// ImportService reconciles consultants and upserts invoices from payroll
// uploads.
type ImportService struct {
	consultants consultant.Repository
	invoices    invoice.Repository
	logger      *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(consultants consultant.Repository, invoices invoice.Repository, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		consultants: consultants,
		invoices:    invoices,
		logger:      logger,
	}
}

// rowProfile carries the consultant columns of one upload row.
type rowProfile struct {
	email string
	name  string
	pan   string
	gstin string
}

// Import processes one uploaded spreadsheet. Validation problems reject the
// whole batch before anything is written.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	reader, err := csvimport.ForFilename(filename, r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if err := reader.ParseHeader(); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	if missing := reader.ValidateHeaders(requiredColumns); len(missing) > 0 {
		mcErr := &csvimport.MissingColumnsError{Columns: missing}
		return nil, shared.NewDomainError("MISSING_COLUMNS", mcErr.Error())
	}

	rows, err := reader.ReadAllRows()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	// Every data row must carry the natural-key fields; offenders are
	// reported together and nothing is processed.
	var badLines []int
	for _, row := range rows {
		if row.Get("consultant_id") == "" || row.Get("invoice_no") == "" || row.Get("billing_period") == "" {
			badLines = append(badLines, row.LineNumber)
		}
	}
	if len(badLines) > 0 {
		irErr := &csvimport.InvalidRowsError{Lines: badLines}
		return nil, shared.NewDomainError("INVALID_ROWS", irErr.Error())
	}

	// One profile per distinct identifier; a later row with an email wins
	// over an earlier one without.
	order := make([]string, 0)
	profiles := make(map[string]rowProfile)
	for _, row := range rows {
		id := row.Get("consultant_id")
		p, seen := profiles[id]
		if !seen {
			order = append(order, id)
			p = rowProfile{}
		}
		if row.Get("email") != "" || !seen {
			p = rowProfile{
				email: strings.ToLower(row.Get("email")),
				name:  row.Get("name"),
				pan:   row.Get("pan"),
				gstin: row.Get("gstin"),
			}
		}
		profiles[id] = p
	}

	placeholders := 0
	for _, id := range order {
		created, err := s.reconcileConsultant(ctx, id, profiles[id])
		if err != nil {
			return nil, err
		}
		if created {
			placeholders++
		}
	}

	batch, err := buildInvoices(rows)
	if err != nil {
		return nil, err
	}

	persisted, err := s.invoices.UpsertBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payroll import completed",
		zap.String("file", filename),
		zap.Int("rows", len(rows)),
		zap.Int("invoices", len(persisted)),
		zap.Int("placeholders_created", placeholders))

	return &ImportResult{
		Count:               len(persisted),
		Invoices:            persisted,
		PlaceholdersCreated: placeholders,
	}, nil
}

// reconcileConsultant applies one identifier's profile inside a transaction.
// It reports whether a placeholder row was created.
func (s *ImportService) reconcileConsultant(ctx context.Context, id string, p rowProfile) (bool, error) {
	createdPlaceholder := false

	err := s.consultants.InTx(ctx, func(repo consultant.Repository) error {
		existing, err := repo.FindByConsultantID(ctx, id)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			return s.createForIdentifier(ctx, repo, id, p, &createdPlaceholder)
		case err != nil:
			return err
		}

		if existing.IsPlaceholder() {
			existing.UpdateProfile(p.name, p.pan, p.gstin)
			if p.email != "" {
				if err := existing.Claim(p.email); err != nil {
					return err
				}
			}
			return repo.Save(ctx, existing)
		}

		// Identifier already belongs to a real account. A different row
		// email means the upload is trying to reassign it.
		if p.email != "" && !strings.EqualFold(p.email, existing.Email) {
			return shared.NewDomainError("IDENTIFIER_CONFLICT",
				fmt.Sprintf("Consultant identifier %q is already registered to another account", id))
		}
		existing.UpdateProfile(p.name, p.pan, p.gstin)
		return repo.Save(ctx, existing)
	})

	return createdPlaceholder, err
}

func (s *ImportService) createForIdentifier(ctx context.Context, repo consultant.Repository, id string, p rowProfile, createdPlaceholder *bool) error {
	if p.email != "" {
		// The address may belong to a consultant auto-provisioned at first
		// login; adopt that row instead of inserting a second one.
		byEmail, err := repo.FindByEmail(ctx, p.email)
		switch {
		case err == nil:
			if err := byEmail.SetIdentifier(id); err != nil {
				return err
			}
			byEmail.UpdateProfile(p.name, p.pan, p.gstin)
			return repo.Save(ctx, byEmail)
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		c, err := consultant.NewFromImport(id, p.email, p.name, p.pan, p.gstin)
		if err != nil {
			return err
		}
		return repo.Save(ctx, c)
	}

	c, err := consultant.NewPlaceholder(id)
	if err != nil {
		return err
	}
	c.UpdateProfile(p.name, p.pan, p.gstin)
	if err := repo.Save(ctx, c); err != nil {
		return err
	}
	*createdPlaceholder = true
	return nil
}

// buildInvoices converts data rows into invoice aggregates, last row winning
// for a repeated (consultant_id, invoice_no) pair.
func buildInvoices(rows []*csvimport.Row) ([]*invoice.Invoice, error) {
	type key struct{ consultantID, invoiceNo string }
	byKey := make(map[key]*invoice.Invoice)
	order := make([]key, 0, len(rows))

	for _, row := range rows {
		inv, err := invoice.New(
			row.Get("consultant_id"),
			row.Get("invoice_no"),
			row.Get("billing_period"),
			invoice.Amounts{
				ProfessionalFee: parseAmount(row.Get("professional_fee")),
				Incentive:       parseAmount(row.Get("incentive")),
				Variable:        parseAmount(row.Get("variable")),
				TDS:             parseAmount(row.Get("tds")),
				Reimbursement:   parseAmount(row.Get("reimbursement")),
			},
			invoice.DayCounts{
				TotalDays:      parseDays(row.Get("total_days")),
				WorkingDays:    parseDays(row.Get("working_days")),
				LOPDays:        parseDays(row.Get("lop_days")),
				NetPayableDays: parseDays(row.Get("net_payable_days")),
			},
		)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ROWS",
				fmt.Sprintf("line %d: %s", row.LineNumber, err.Error()))
		}

		k := key{inv.ConsultantID, inv.InvoiceNo}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = inv
	}

	result := make([]*invoice.Invoice, 0, len(order))
	for _, k := range order {
		result = append(result, byKey[k])
	}
	return result, nil
}

// parseAmount reads a monetary cell permissively: currency symbols and
// thousands separators are dropped, unparseable values become zero.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDays reads a day-count cell permissively, rounding fractions down.
func parseDays(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
