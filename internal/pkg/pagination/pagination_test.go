package pagination

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetParams(t *testing.T) {
	app := fiber.New()
	var got Params
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetParams(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?page=3&limit=500", nil))
	require.NoError(t, err)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, MaxLimit, got.Limit)
	assert.Equal(t, 200, got.Offset)

	_, err = app.Test(httptest.NewRequest("GET", "/?page=-1&limit=x", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, DefaultLimit, got.Limit)
	assert.Equal(t, 0, got.Offset)

	_, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, got)
}

func TestGetMeta(t *testing.T) {
	meta := GetMeta(Params{Page: 2, Limit: 20}, 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrev)

	meta = GetMeta(Params{Page: 1, Limit: 20}, 0)
	assert.Equal(t, 0, meta.TotalPages)
	assert.False(t, meta.HasNext)
}

func TestNewPage_EmptyIsArray(t *testing.T) {
	body, err := json.Marshal(NewPage[string](nil, Params{Page: 1, Limit: 20}, 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[],"meta":{"page":1,"limit":20,"total":0,"total_pages":0,"has_next":false,"has_prev":false}}`, string(body))
}
