package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/invoiceportal/backend/internal/application/onboarding"
	"github.com/invoiceportal/backend/internal/domain/consultant"
	"github.com/invoiceportal/backend/internal/interfaces/http/middleware"
)

// ProfileHandler serves the session profile and the onboarding flow.
type ProfileHandler struct {
	BaseHandler
	profiles *onboarding.Service
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles *onboarding.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// ProfileResponse is the API shape of a consultant profile.
type ProfileResponse struct {
	ID              string `json:"id"`
	ConsultantID    string `json:"consultant_id"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	PAN             string `json:"pan"`
	GSTIN           string `json:"gstin"`
	BankBeneficiary string `json:"bank_beneficiary"`
	BankName        string `json:"bank_name"`
	BankAccount     string `json:"bank_account"`
	BankIFSC        string `json:"bank_ifsc"`
	IsAdmin         bool   `json:"is_admin"`
	Onboarded       bool   `json:"onboarded"`
}

func toProfileResponse(c *consultant.Consultant) ProfileResponse {
	return ProfileResponse{
		ID:              c.ID.String(),
		ConsultantID:    c.ConsultantID,
		Email:           c.Email,
		Name:            c.Name,
		PAN:             c.PAN,
		GSTIN:           c.GSTIN,
		BankBeneficiary: c.BankBeneficiary,
		BankName:        c.BankName,
		BankAccount:     c.BankAccount,
		BankIFSC:        c.BankIFSC,
		IsAdmin:         c.IsAdmin,
		Onboarded:       c.HasCompleteProfile(),
	}
}

// Me returns the caller's profile, creating a bare record on first sight.
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.profiles.Me(c.Request.Context(),
		middleware.GetSessionEmail(c), middleware.GetSessionName(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(profile))
}

// CompleteOnboarding merges the submitted profile into the right consultant
// record.
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	var input onboarding.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	merged, err := h.profiles.Complete(c.Request.Context(), middleware.GetSessionEmail(c), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toProfileResponse(merged))
}

// RegisterRoutes registers the profile routes
func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.POST("/onboarding", h.CompleteOnboarding)
}
