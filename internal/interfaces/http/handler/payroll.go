package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/invoiceportal/backend/internal/application/onboarding"
	"github.com/invoiceportal/backend/internal/application/payroll"
	"github.com/invoiceportal/backend/internal/interfaces/http/dto"
	"github.com/invoiceportal/backend/internal/interfaces/http/middleware"
)

// maxImportFileSize caps uploaded spreadsheets at 10MB.
const maxImportFileSize = 10 << 20

// PayrollHandler handles payroll spreadsheet uploads.
type PayrollHandler struct {
	BaseHandler
	importer *payroll.ImportService
	profiles *onboarding.Service
}

// NewPayrollHandler creates a new PayrollHandler
func NewPayrollHandler(importer *payroll.ImportService, profiles *onboarding.Service) *PayrollHandler {
	return &PayrollHandler{importer: importer, profiles: profiles}
}

// Import accepts a multipart payroll file and upserts its invoices.
// Admin only.
func (h *PayrollHandler) Import(c *gin.Context) {
	actor, err := h.profiles.Me(c.Request.Context(),
		middleware.GetSessionEmail(c), middleware.GetSessionName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !actor.IsAdmin {
		h.Forbidden(c, "Payroll import requires an admin account")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
			"file exceeds maximum size of 10MB")
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		h.BadRequest(c, "file must be a .csv or .xlsx spreadsheet")
		return
	}

	result, err := h.importer.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers the payroll routes
func (h *PayrollHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payroll/import", h.Import)
}
