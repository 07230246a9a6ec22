package handlers

import (
	"errors"
	"strconv"
	"strings"

	"spsc-coopfund/internal/adapters/persistence/models"
	"spsc-coopfund/internal/adapters/persistence/repositories"
	"spsc-coopfund/internal/core/domain"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MasterHandler handles master data endpoints
type MasterHandler struct {
	loanTypeRepo repositories.LoanTypeRepository
}

// NewMasterHandler creates a new master handler
func NewMasterHandler(loanTypeRepo repositories.LoanTypeRepository) *MasterHandler {
	return &MasterHandler{loanTypeRepo: loanTypeRepo}
}

// ============================================================
// Loan Type
// ============================================================

// ListLoanTypes lists active loan types
// @Summary List loan types
// @Description Get active loan products with their pricing rules
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /master/loan-types [get]
func (h *MasterHandler) ListLoanTypes(c *fiber.Ctx) error {
	loanTypes, err := h.loanTypeRepo.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list loan types")
	}

	return response.Success(c, "Loan types retrieved successfully", fiber.Map{
		"loan_types": loanTypes,
	})
}

// GetLoanType gets a loan type by ID
// @Summary Get loan type
// @Description Get a loan type by ID
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan Type ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /master/loan-types/{id} [get]
func (h *MasterHandler) GetLoanType(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	loanType, err := h.loanTypeRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Loan type not found")
	}

	return response.Success(c, "Loan type retrieved successfully", fiber.Map{
		"loan_type": loanType,
	})
}

// LoanTypeRequest represents create/update loan type request
type LoanTypeRequest struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	MonthlyRate       decimal.Decimal `json:"monthly_rate"`
	ProcessingFeeRate decimal.Decimal `json:"processing_fee_rate"`
	MinTerm           int             `json:"min_term"`
	MaxTerm           int             `json:"max_term"`
	MaxAmount         decimal.Decimal `json:"max_amount"`
	IsActive          *bool           `json:"is_active,omitempty"`
}

func (r *LoanTypeRequest) validate() string {
	if r.Name == "" {
		return "Name is required"
	}
	if r.MonthlyRate.IsNegative() || r.ProcessingFeeRate.IsNegative() || r.MaxAmount.IsNegative() {
		return "Rates and max amount cannot be negative"
	}
	if r.MinTerm < 1 || r.MaxTerm < r.MinTerm {
		return "Terms must satisfy 1 <= min_term <= max_term"
	}
	return ""
}

func (r *LoanTypeRequest) apply(lt *models.LoanType) {
	lt.Name = r.Name
	lt.Description = r.Description
	lt.MonthlyRate = r.MonthlyRate
	lt.ProcessingFeeRate = r.ProcessingFeeRate
	lt.MinTerm = r.MinTerm
	lt.MaxTerm = r.MaxTerm
	lt.MaxAmount = r.MaxAmount
	if r.IsActive != nil {
		lt.IsActive = *r.IsActive
	}
}

// CreateLoanType creates a loan type
// @Summary Create loan type
// @Description Create pricing rules for a loan product code (Admin only)
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LoanTypeRequest true "Loan type data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /master/loan-types [post]
func (h *MasterHandler) CreateLoanType(c *fiber.Ctx) error {
	var req LoanTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if !domain.LoanType(req.Code).Valid() {
		return response.BadRequest(c, "Code must be REGULAR or QUICKCASH")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	loanType := &models.LoanType{Code: req.Code, IsActive: true}
	req.apply(loanType)

	if err := h.loanTypeRepo.Create(c.Context(), loanType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "Loan type code already exists")
		}
		return response.InternalServerError(c, "Failed to create loan type")
	}

	return response.Created(c, "Loan type created successfully", fiber.Map{
		"loan_type": loanType,
	})
}

// UpdateLoanType updates a loan type
// @Summary Update loan type
// @Description Update pricing rules; loans already approved keep their terms (Admin only)
// @Tags Master
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan Type ID"
// @Param body body LoanTypeRequest true "Loan type data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /master/loan-types/{id} [put]
func (h *MasterHandler) UpdateLoanType(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid ID")
	}

	loanType, err := h.loanTypeRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Loan type not found")
	}

	var req LoanTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	req.apply(loanType)

	if err := h.loanTypeRepo.Update(c.Context(), loanType); err != nil {
		return response.InternalServerError(c, "Failed to update loan type")
	}

	return response.Success(c, "Loan type updated successfully", fiber.Map{
		"loan_type": loanType,
	})
}
