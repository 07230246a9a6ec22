package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CacheControl sets public cache headers on successful GET responses
func CacheControl(maxAge time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() == fiber.MethodGet && c.Response().StatusCode() == fiber.StatusOK {
			c.Set(fiber.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
		}

		return err
	}
}

// MasterDataCache returns cache middleware for master data (1 hour cache)
func MasterDataCache() fiber.Handler {
	return CacheControl(time.Hour)
}

// NoCacheHeaders sets no-cache headers.
// Balances and queue state must never be served stale.
func NoCacheHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return c.Next()
	}
}
