package handlers

import (
	"spsc-coopfund/internal/adapters/http/middleware"
	"spsc-coopfund/internal/core/services"
	"spsc-coopfund/internal/pkg/pagination"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles member request submissions
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// ownsMember rejects members submitting on behalf of someone else
func ownsMember(c *fiber.Ctx, memberID string) bool {
	return middleware.IsStaff(c) || middleware.CurrentMember(c) == memberID
}

// SubmitDeposit queues a deposit request
// @Summary Submit deposit
// @Description Queue a deposit for admin approval
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.DepositInput true "Deposit"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests/deposits [post]
func (h *RequestHandler) SubmitDeposit(c *fiber.Ctx) error {
	var input services.DepositInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !ownsMember(c, input.MemberID) {
		return response.Forbidden(c, "You can only submit requests for your own account")
	}

	req, err := h.requestService.SubmitDeposit(c.Context(), &input)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, "Deposit request submitted", fiber.Map{
		"request": req,
	})
}

// SubmitWithdrawal queues a withdrawal request
// @Summary Submit withdrawal
// @Description Queue a savings withdrawal for admin approval
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.WithdrawalInput true "Withdrawal"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests/withdrawals [post]
func (h *RequestHandler) SubmitWithdrawal(c *fiber.Ctx) error {
	var input services.WithdrawalInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !ownsMember(c, input.MemberID) {
		return response.Forbidden(c, "You can only submit requests for your own account")
	}

	req, err := h.requestService.SubmitWithdrawal(c.Context(), &input)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, "Withdrawal request submitted", fiber.Map{
		"request": req,
	})
}

// SubmitLoanApplication queues a loan application
// @Summary Apply for a loan
// @Description Queue a loan application for admin approval
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.LoanApplicationInput true "Loan application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests/loans [post]
func (h *RequestHandler) SubmitLoanApplication(c *fiber.Ctx) error {
	var input services.LoanApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !ownsMember(c, input.MemberID) {
		return response.Forbidden(c, "You can only submit requests for your own account")
	}

	req, err := h.requestService.SubmitLoanApplication(c.Context(), &input)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, "Loan application submitted", fiber.Map{
		"request": req,
	})
}

// SubmitLoanPayment queues a loan payment
// @Summary Pay loan
// @Description Queue a loan payment for admin approval
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.LoanPaymentInput true "Loan payment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests/loan-payments [post]
func (h *RequestHandler) SubmitLoanPayment(c *fiber.Ctx) error {
	var input services.LoanPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !ownsMember(c, input.MemberID) {
		return response.Forbidden(c, "You can only submit requests for your own account")
	}

	req, err := h.requestService.SubmitLoanPayment(c.Context(), &input)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, "Loan payment submitted", fiber.Map{
		"request": req,
	})
}

// SubmitMembershipWithdrawal queues a membership withdrawal
// @Summary Leave the cooperative
// @Description Queue a membership withdrawal; the full balance is paid out on approval
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MembershipWithdrawalInput true "Membership withdrawal"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /requests/membership-withdrawals [post]
func (h *RequestHandler) SubmitMembershipWithdrawal(c *fiber.Ctx) error {
	var input services.MembershipWithdrawalInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !ownsMember(c, input.MemberID) {
		return response.Forbidden(c, "You can only submit requests for your own account")
	}

	req, err := h.requestService.SubmitMembershipWithdrawal(c.Context(), &input)
	if err != nil {
		return respondError(c, err)
	}

	return response.Created(c, "Membership withdrawal submitted", fiber.Map{
		"request": req,
	})
}

// ListMemberRequests lists every request a member has submitted
// @Summary List member requests
// @Description List a member's requests in any state, newest first
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /members/{member_id}/requests [get]
func (h *RequestHandler) ListMemberRequests(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	requests, total, err := h.requestService.ListByMember(c.Context(), c.Params("member_id"), params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Requests retrieved successfully", pagination.NewPage(requests, params, total))
}
