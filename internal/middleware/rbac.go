package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/utils"
)

// RolePolicy maps a route group to the roles allowed to mutate it. Read
// access is granted to every authenticated user unless ReadRoles narrows it.
type RolePolicy struct {
	WriteRoles []string
	ReadRoles  []string
}

// DefaultPolicies is the declarative access table for the API surface. The
// router consults it instead of hard-coding role checks per route.
var DefaultPolicies = map[string]RolePolicy{
	"courses":     {WriteRoles: []string{models.RoleAdmin}},
	"clos":        {WriteRoles: []string{models.RoleAdmin}},
	"assignments": {WriteRoles: []string{models.RoleAdmin}, ReadRoles: []string{models.RoleAdmin}},
	"users":       {WriteRoles: []string{models.RoleAdmin}, ReadRoles: []string{models.RoleAdmin}},
	"content":     {WriteRoles: []string{models.RoleAdmin, models.RoleFaculty}},
}

// RequireRole ensures that the authenticated user possesses one of the
// allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToUpper(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := normalizeRoleValue(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RequireWrite guards mutating verbs with the policy's write roles while
// leaving reads to the policy's read roles, or open to any authenticated
// user when no read roles are declared.
func RequireWrite(policy RolePolicy) fiber.Handler {
	writeGuard := RequireRole(policy.WriteRoles...)
	var readGuard fiber.Handler
	if len(policy.ReadRoles) > 0 {
		readGuard = RequireRole(policy.ReadRoles...)
	}

	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead:
			if readGuard != nil {
				return readGuard(c)
			}
			return c.Next()
		default:
			return writeGuard(c)
		}
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToUpper(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToUpper(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToUpper(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
