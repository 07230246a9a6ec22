package handlers

import (
	"spsc-coopfund/internal/core/services"
	"spsc-coopfund/internal/pkg/pagination"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member account endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// Get returns a member account with its active loan
// @Summary Member account
// @Description Balance, outstanding loan total, status and the active loan if any
// @Tags Members
// @Produce json
// @Security BearerAuth
// @Param member_id path string true "Member ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{member_id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	account, err := h.memberService.Get(c.Context(), c.Params("member_id"))
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Member retrieved successfully", fiber.Map{
		"member": account,
	})
}

// List lists member accounts
// @Summary List members
// @Description List member accounts (Officer/Admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /admin/members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	members, total, err := h.memberService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return response.Success(c, "Members retrieved successfully", pagination.NewPage(members, params, total))
}
