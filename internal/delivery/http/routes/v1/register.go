package v1

import (
	"skill-readiness/internal/delivery/http/handler"
	"skill-readiness/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

// Register mounts the learner-scoped API. Every route requires a valid
// access token.
func Register(r fiber.Router, authMw *middleware.AuthMiddleware, readiness *handler.ReadinessHandler, jobMatch *handler.JobMatchHandler) {
	if r == nil || authMw == nil {
		return
	}

	protected := r.Group("", authMw.Middleware())

	if readiness != nil {
		readiness.RegisterRoutes(protected)
	}
	if jobMatch != nil {
		jobMatch.RegisterRoutes(protected)
	}
}
