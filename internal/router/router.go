package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/acadex/acadex-api/internal/config"
	"github.com/acadex/acadex-api/internal/handler"
	"github.com/acadex/acadex-api/internal/middleware"
	"github.com/acadex/acadex-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CourseHandler     *handler.CourseHandler
	CLOHandler        *handler.CLOHandler
	AssignmentHandler *handler.AssignmentHandler
	ContentHandler    *handler.ContentHandler
	JWTMiddleware     fiber.Handler
	OptionalJWT       fiber.Handler
	Policies          map[string]middleware.RolePolicy
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	policies := deps.Policies
	if policies == nil {
		policies = middleware.DefaultPolicies
	}

	optionalJWT := deps.OptionalJWT
	if optionalJWT == nil {
		optionalJWT = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		// Registration accepts anonymous callers, but an admin creating a
		// privileged account authenticates on the same route.
		deps.AuthHandler.Register(api.Group("/auth", optionalJWT))
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware, middleware.RequireWrite(policies["courses"]))
		deps.CourseHandler.Register(courses)
	}

	if deps.CLOHandler != nil {
		clos := api.Group("/clos", jwtMiddleware, middleware.RequireWrite(policies["clos"]))
		deps.CLOHandler.Register(clos)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware, middleware.RequireWrite(policies["assignments"]))
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.ContentHandler != nil {
		content := api.Group("/content", jwtMiddleware, middleware.RequireWrite(policies["content"]))
		deps.ContentHandler.Register(content)
	}

	if deps.UserHandler != nil {
		// The activity route enforces the admin-or-self rule in the handler,
		// so it registers before the admin guard wraps the rest of the group.
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.RegisterActivity(users)
		guarded := users.Group("", middleware.RequireWrite(policies["users"]))
		deps.UserHandler.Register(guarded)
	}
}
