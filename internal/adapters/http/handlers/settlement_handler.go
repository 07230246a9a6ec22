package handlers

import (
	"spsc-coopfund/internal/adapters/http/middleware"
	"spsc-coopfund/internal/core/domain"
	"spsc-coopfund/internal/core/services"
	"spsc-coopfund/internal/pkg/pagination"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SettlementHandler handles the admin review queue
type SettlementHandler struct {
	requestService    *services.RequestService
	settlementService *services.SettlementService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(requestService *services.RequestService, settlementService *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		requestService:    requestService,
		settlementService: settlementService,
	}
}

// ListPending lists pending requests
// @Summary List pending requests
// @Description List pending requests oldest first, optionally filtered by kind (Officer/Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param kind query string false "DEPOSIT, WITHDRAWAL, LOAN_APPLICATION, LOAN_PAYMENT or MEMBERSHIP_WITHDRAWAL"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/requests [get]
func (h *SettlementHandler) ListPending(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	kind := domain.Kind(c.Query("kind"))

	requests, total, err := h.requestService.ListPending(c.Context(), kind, params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Pending requests retrieved successfully", pagination.NewPage(requests, params, total))
}

// Approve settles a pending request
// @Summary Approve request
// @Description Approve a pending request and apply it to balances, the loan register and the funds pool (Officer/Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /admin/requests/{member_id}/{transaction_id}/approve [post]
func (h *SettlementHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, domain.DecisionApprove)
}

// Reject settles a pending request without moving money
// @Summary Reject request
// @Description Reject a pending request (Officer/Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /admin/requests/{member_id}/{transaction_id}/reject [post]
func (h *SettlementHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, domain.DecisionReject)
}

func (h *SettlementHandler) decide(c *fiber.Ctx, decision domain.Decision) error {
	result, err := h.settlementService.Settle(c.Context(), services.SettleInput{
		MemberID:      c.Params("member_id"),
		TransactionID: c.Params("transaction_id"),
		Decision:      decision,
		DecidedBy:     middleware.CurrentUsername(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	switch result.Outcome {
	case services.OutcomeAlreadyProcessed:
		return response.Success(c, "Request was already processed", result)
	case services.OutcomeNotFound:
		return response.Success(c, "No pending request found", result)
	}

	if decision == domain.DecisionApprove {
		return response.Success(c, "Request approved", result)
	}
	return response.Success(c, "Request rejected", result)
}
