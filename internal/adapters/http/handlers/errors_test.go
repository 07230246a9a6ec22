package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"spsc-coopfund/internal/core/domain"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"duplicate", fmt.Errorf("%w: T1", domain.ErrDuplicateRequest), http.StatusConflict, "DUPLICATE_REQUEST"},
		{"insufficient funds", fmt.Errorf("%w: balance", domain.ErrInsufficientFunds), http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"inactive member", fmt.Errorf("%w: %w", domain.ErrInvalidState, domain.ErrMemberInactive), http.StatusUnprocessableEntity, "MEMBER_INACTIVE"},
		{"invalid state", fmt.Errorf("%w: active loan", domain.ErrInvalidState), http.StatusUnprocessableEntity, "INVALID_STATE"},
		{"invalid input", fmt.Errorf("%w: amount", domain.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"member not found", fmt.Errorf("%w: M-9", domain.ErrMemberNotFound), http.StatusNotFound, "MEMBER_NOT_FOUND"},
		{"not found", fmt.Errorf("%w: ledger", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"data integrity", fmt.Errorf("%w: no loan", domain.ErrDataIntegrity), http.StatusInternalServerError, "DATA_INTEGRITY"},
		{"persistence", fmt.Errorf("%w: save member", domain.ErrPersistence), http.StatusInternalServerError, "PERSISTENCE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)

			var body response.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}
