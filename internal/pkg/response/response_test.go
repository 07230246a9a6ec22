package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorWithCode(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return ErrorWithCode(c, fiber.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds")
	})

	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INSUFFICIENT_FUNDS", body["code"])
	assert.Equal(t, "Insufficient funds", body["error"])
}

func TestSuccessOmitsErrorFields(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return Created(c, "Request queued", fiber.Map{"state": "PENDING"})
	})

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "code")
	assert.NotContains(t, body, "error")
}
