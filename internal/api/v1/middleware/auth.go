package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ownerIDKey is the locals key carrying the authenticated owner id.
const ownerIDKey = "owner_id"

// Auth returns a middleware that requires a Bearer token signed with the
// shared secret and stores the token's user id for handlers.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		userID, ok := claims["user_id"].(float64)
		if !ok || userID <= 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "token is missing user_id",
			})
		}

		c.Locals(ownerIDKey, uint(userID))
		return c.Next()
	}
}

// OwnerID returns the authenticated owner id set by Auth, or zero when the
// route is not authenticated.
func OwnerID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(ownerIDKey).(uint); ok {
		return id
	}
	return 0
}

// IssueToken creates a signed token for the given user, used by the CLI and
// tests.
func IssueToken(secret string, userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
	})
	return token.SignedString([]byte(secret))
}
