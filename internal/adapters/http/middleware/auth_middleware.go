package middleware

import (
	"strings"

	"spsc-coopfund/internal/config"
	"spsc-coopfund/internal/core/domain"
	"spsc-coopfund/internal/pkg/jwt"
	"spsc-coopfund/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalMembNo   = "membNo"
	LocalUsername = "username"
	LocalRole     = "role"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret, cfg.JWT.Issuer)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals(LocalMembNo, claims.MembNo)
		c.Locals(LocalUsername, claims.Username)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		// Check if user's role is in allowed roles
		for _, allowedRole := range allowedRoles {
			if role == string(allowedRole) {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleAdmin)
}

// OfficerOrAdmin middleware allows OFFICER or ADMIN roles
func OfficerOrAdmin() fiber.Handler {
	return RoleMiddleware(domain.RoleOfficer, domain.RoleAdmin)
}

// SelfOrStaff allows members to reach only their own :member_id routes.
// Officers and admins may read any member.
func SelfOrStaff(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsStaff(c) || CurrentMember(c) == c.Params(param) {
			return c.Next()
		}
		return response.Forbidden(c, "You can only access your own account")
	}
}

// CurrentMember returns the member number of the caller
func CurrentMember(c *fiber.Ctx) string {
	membNo, _ := c.Locals(LocalMembNo).(string)
	return membNo
}

// CurrentUsername returns the username of the caller
func CurrentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(LocalUsername).(string)
	return username
}

// IsStaff reports whether the caller is an officer or admin
func IsStaff(c *fiber.Ctx) bool {
	role, _ := c.Locals(LocalRole).(string)
	return role == string(domain.RoleOfficer) || role == string(domain.RoleAdmin)
}
