package routes

import (
	v1 "skill-readiness/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, deps Deps) {
	if r == nil {
		return
	}

	v1.Register(r, deps.Auth, deps.Readiness, deps.JobMatch)
}
