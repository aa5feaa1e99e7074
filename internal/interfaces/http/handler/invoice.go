package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/invoiceportal/backend/internal/application/invoicing"
	"github.com/invoiceportal/backend/internal/application/onboarding"
	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/domain/invoice"
	"github.com/invoiceportal/backend/internal/interfaces/http/dto"
	"github.com/invoiceportal/backend/internal/interfaces/http/middleware"
)

// InvoiceHandler serves the invoice lifecycle endpoints.
type InvoiceHandler struct {
	BaseHandler
	invoices *invoicing.Service
	profiles *onboarding.Service
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *invoicing.Service, profiles *onboarding.Service) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, profiles: profiles}
}

func (h *InvoiceHandler) actor(c *gin.Context) (*consultant.Consultant, bool) {
	actor, err := h.profiles.Me(c.Request.Context(),
		middleware.GetSessionEmail(c), middleware.GetSessionName(c))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return actor, true
}

// List returns the caller's invoices, or all invoices for admins.
func (h *InvoiceHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	views, err := h.invoices.List(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// Get returns one invoice.
func (h *InvoiceHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice id")
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.invoices.Get(c.Request.Context(), actor, req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Document streams the invoice PDF.
func (h *InvoiceHandler) Document(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice id")
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	data, filename, err := h.invoices.Document(c.Request.Context(), actor, req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// UpdateStatusRequest is the body of the status patch.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending sent paid"`
}

// UpdateStatus applies an administrative status change.
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice id")
		return
	}
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.invoices.UpdateStatus(c.Request.Context(), actor, req.ID, invoice.Status(body.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// SendRequest carries the caller's mail-provider access token.
type SendRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

// Send dispatches the invoice to finance under the caller's token.
func (h *InvoiceHandler) Send(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid invoice id")
		return
	}
	var body SendRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.invoices.Send(c.Request.Context(), actor, req.ID, body.AccessToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// ReminderRequest is the body of the reminder endpoint.
type ReminderRequest struct {
	invoicing.ReminderInput
	AccessToken string `json:"access_token" binding:"required"`
}

// Remind emails a submission reminder to a consultant. Admin only.
func (h *InvoiceHandler) Remind(c *gin.Context) {
	var body ReminderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.invoices.Remind(c.Request.Context(), actor, body.AccessToken, body.ReminderInput); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"sent": true})
}

// RegisterRoutes registers the invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.GET("/:id", h.Get)
		invoices.GET("/:id/document", h.Document)
		invoices.PATCH("/:id/status", h.UpdateStatus)
		invoices.POST("/:id/send", h.Send)
	}
	rg.POST("/reminders", h.Remind)
}
