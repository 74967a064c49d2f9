package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DTyss/GymApp-sub000/internal/models"
	"github.com/DTyss/GymApp-sub000/pkg/utils"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing authorization header")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthorized(c, "Invalid authorization header format")
		}

		return authenticate(c, parts[1], secret)
	}
}

// QueryTokenAuth accepts the bearer token from ?token= for clients such as
// browsers opening a websocket, which cannot set headers.
func QueryTokenAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			if parts := strings.Split(c.Get("Authorization"), " "); len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
		if token == "" {
			return unauthorized(c, "Missing token")
		}
		return authenticate(c, token, secret)
	}
}

func authenticate(c *fiber.Ctx, token, secret string) error {
	claims, err := utils.ValidateToken(token, secret)
	if err != nil {
		return unauthorized(c, "Invalid or expired token")
	}
	userID, err := models.ParseID(claims.UserID)
	if err != nil || userID <= 0 {
		return unauthorized(c, "Invalid token subject")
	}

	c.Locals(LocalUserID, userID)
	c.Locals(LocalRole, claims.Role)

	return c.Next()
}

// RequireRole lets the request through only when the authenticated role is
// one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden",
			"code":  "FORBIDDEN",
		})
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
	})
}
