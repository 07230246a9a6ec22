package handlers

import (
	"errors"

	"spsc-coopfund/internal/core/domain"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// errorMapping pairs a domain error with its HTTP status and response code.
// Order matters: the first match wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrDuplicateRequest, fiber.StatusConflict, "DUPLICATE_REQUEST"},
	{domain.ErrInsufficientFunds, fiber.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
	{domain.ErrMemberInactive, fiber.StatusUnprocessableEntity, "MEMBER_INACTIVE"},
	{domain.ErrInvalidState, fiber.StatusUnprocessableEntity, "INVALID_STATE"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrMemberNotFound, fiber.StatusNotFound, "MEMBER_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
}

// respondError maps a service error to the response envelope
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return response.ErrorWithCode(c, m.status, m.code, err.Error())
		}
	}

	switch {
	case errors.Is(err, domain.ErrDataIntegrity):
		return response.ErrorWithCode(c, fiber.StatusInternalServerError, "DATA_INTEGRITY",
			"Stored data is inconsistent, contact an administrator: "+err.Error())
	case errors.Is(err, domain.ErrPersistence):
		return response.ErrorWithCode(c, fiber.StatusInternalServerError, "PERSISTENCE",
			"Could not save the change, retry the request: "+err.Error())
	default:
		return response.InternalServerError(c, "Internal Server Error")
	}
}
