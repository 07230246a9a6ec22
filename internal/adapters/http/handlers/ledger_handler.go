package handlers

import (
	"strings"

	"spsc-coopfund/internal/core/domain"
	"spsc-coopfund/internal/core/services"
	"spsc-coopfund/internal/pkg/pagination"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LedgerHandler handles ledger endpoints
type LedgerHandler struct {
	ledgerService *services.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// History lists a member's ledger
// @Summary Member ledger
// @Description List a member's settled requests newest first (Officer/Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/ledger/{member_id} [get]
func (h *LedgerHandler) History(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	entries, total, err := h.ledgerService.History(c.Context(), c.Params("member_id"), params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Ledger retrieved successfully", pagination.NewPage(entries, params, total))
}

// Get returns a single ledger entry
// @Summary Ledger entry
// @Description Get the ledger entry of one settled request (Officer/Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Param kind path string true "Request kind"
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/ledger/{member_id}/{kind}/{transaction_id} [get]
func (h *LedgerHandler) Get(c *fiber.Ctx) error {
	kind := domain.Kind(strings.ToUpper(c.Params("kind")))

	entry, err := h.ledgerService.Get(c.Context(), kind, c.Params("member_id"), c.Params("transaction_id"))
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Ledger entry retrieved successfully", fiber.Map{
		"entry": entry,
	})
}
