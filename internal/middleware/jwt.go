package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/acadex/acadex-api/internal/repository"
	"github.com/acadex/acadex-api/internal/utils"
)

// JWTProtected returns a middleware that validates JWT bearer tokens. The
// subject is re-resolved against the user store on every request, so deleted
// accounts lose access immediately and role changes take effect without
// re-login.
func JWTProtected(secret string, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		if err := resolveBearerIdentity(c, secret, users); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		return c.Next()
	}
}

// JWTOptional resolves the caller's identity when a bearer token is present
// and passes anonymous requests through untouched. A token that is present
// but invalid is still rejected.
func JWTOptional(secret string, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}

		if err := resolveBearerIdentity(c, secret, users); err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		return c.Next()
	}
}

func resolveBearerIdentity(c *fiber.Ctx, secret string, users repository.UserRepository) error {
	authorization := c.Get("Authorization")

	const bearer = "Bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
		return fmt.Errorf("invalid authorization header")
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return fmt.Errorf("invalid token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("invalid token claims")
	}

	userID := extractUserIDFromClaims(claims)
	if userID == nil {
		return fmt.Errorf("invalid token subject")
	}

	user, err := users.GetByID(c.Context(), *userID)
	if err != nil {
		return fmt.Errorf("account no longer active")
	}

	c.Locals("user_id", user.ID)
	c.Locals("user_role", user.Role)

	return nil
}

func extractUserIDFromClaims(claims jwt.MapClaims) *uint {
	keys := []string{"sub", "user_id", "id"}
	for _, key := range keys {
		if value, ok := claims[key]; ok {
			if normalized, err := normalizeUserID(value); err == nil {
				return &normalized
			}
		}
	}

	return nil
}

func normalizeUserID(value interface{}) (uint, error) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return uint(parsed), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("invalid subject")
		}
		return uint(v), nil
	default:
		return 0, fmt.Errorf("unsupported subject type")
	}
}
